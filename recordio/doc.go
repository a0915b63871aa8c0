// Package recordio implements the framing used by buffer-backed merge
// sources: a msgpack map with exactly one entry whose key is PayloadKey and
// whose value is an array of records, each record itself a msgpack array.
//
//	{0x30: [[1, "a"], [2, "b"], ...]}
//
// Readers strip the wrapper once with OpenEnvelope and then walk records
// back to back with Next or Seq until the buffer is exhausted.
//
// Basic usage:
//
//	var buf bytes.Buffer
//	w := recordio.NewWriter(&buf)
//	for _, t := range tuples {
//	    if err := w.Write(t); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	if _, err := w.Close(); err != nil {
//	    log.Fatal(err)
//	}
//
//	_, body, err := recordio.OpenEnvelope(buf.Bytes())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for record, err := range recordio.Seq(body) {
//	    ...
//	}
package recordio
