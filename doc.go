// Package merger merges several sorted tuple streams into one sorted stream
// without re-sorting them.
//
// A Session is created once per key definition and started over a list of
// sources. Each source is either a buffer holding a msgpack envelope of
// tuples, or a function producing one tuple per call. Next repeatedly hands
// out the smallest head tuple (the largest for a descending merge) and
// refills the source it came from:
//
//	s, err := merger.New([]keydef.PartSpec{{FieldNo: 1, Type: "unsigned"}})
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	if err := s.Start(ctx, []source.Input{source.NewBuffer(a), source.NewBuffer(b)}, 1); err != nil {
//		return err
//	}
//	for t, err := range s.All(ctx) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(t)
//	}
//
// Inputs are trusted to be sorted by the session key in the requested
// direction. Equal keys from different sources come out in no particular
// order.
package merger
