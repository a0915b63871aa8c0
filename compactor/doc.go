// Package compactor drains merge sessions into envelopes.
//
// The output of a compaction is itself a valid buffer input, so merge
// stages can be chained: several sorted runs are compacted into one, which
// is merged again with other runs later.
//
// Basic usage:
//
//	s, err := merger.New([]keydef.PartSpec{{FieldNo: 1, Type: "unsigned"}})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//
//	file, err := os.Create("run.bin")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer file.Close()
//
//	_, err = compactor.Compact(ctx, file, s, 1, source.NewBuffer(run1), source.NewBuffer(run2))
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Equal keys are all kept; the compactor never drops tuples.
package compactor
