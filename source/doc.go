// Package source implements the inputs of a merge.
//
// A source is one of two variants:
//
//   - buffer-backed: a *Buffer holding an envelope (see package recordio)
//     of msgpack tuples. The envelope is stripped once when the source is
//     opened and tuples are then decoded back to back until the buffer is
//     exhausted. The buffer belongs to the caller; the source only moves its
//     read cursor forward.
//   - function-backed: a *Function whose Func is called once per fetch and
//     returns a *tuple.Tuple, or nil at end of stream. Once it has reported
//     the end it is never called again. Its release hook runs exactly once,
//     when the source is retired.
//
// Each Source pins its current head tuple. Take transfers the head to the
// caller, leaving the slot empty until the next Fetch.
package source
