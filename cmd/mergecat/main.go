// Command mergecat merges sorted tuple files.
//
// Inputs are envelope files (a msgpack map {0x30: [tuple, ...]}) or JSON
// lines files (*.jsonl, one JSON array per line, in any order). Either may
// be compressed with zstd (*.zst) or lz4 (*.lz4).
//
//	mergecat pack --key 1:unsigned -o run1.bin a.jsonl
//	mergecat merge --key 1:unsigned run1.bin run2.bin.zst
//	mergecat peek --key 1:unsigned --probe '[10]' run1.bin run2.bin
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
