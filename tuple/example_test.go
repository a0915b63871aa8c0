package tuple_test

import (
	"fmt"

	"github.com/davidvella/merger/tuple"
)

func ExampleDecode() {
	first, _ := tuple.Encode(uint64(1), "alice")
	second, _ := tuple.Encode(uint64(2), "bob")
	buf := append(first, second...)

	for len(buf) > 0 {
		t, rest, err := tuple.Decode(buf)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(t)
		buf = rest
	}

	// Output:
	// [1,"alice"]
	// [2,"bob"]
}
