// Package pebble stores tuples in a pebble database under order-preserving
// keys, so that a store can be read back as an already sorted merge input.
//
// Keys are built from the key parts of each tuple followed by an insertion
// sequence number; the value is the tuple's msgpack encoding. Sources
// returned by Store.Source hold an open iterator and must be released (by
// closing or restarting the session) before the store is closed.
package pebble
