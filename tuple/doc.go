// Package tuple implements the record type merged by the merger: a msgpack
// array whose fields are decoded once into typed values.
//
// A Tuple never aliases the buffer it was decoded from, so it stays valid
// after the originating buffer is reused.
//
// Basic usage:
//
//	data, _ := tuple.Encode(uint64(1), "alice", true)
//	t, err := tuple.New(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	name, _ := t.Field(1)
//	fmt.Println(name) // alice
//
// Decode reads one tuple from the front of a larger buffer and returns the
// rest, which is how buffer-backed merge sources walk their input.
package tuple
