// Package index holds tuples in key order in memory. A Tree is the usual
// way to turn an unsorted collection into a merge input.
package index
