// Command sasigo-dump opens an index file built by builder.SSIBuilder
// and prints its header and footer fields, for manual inspection
// during development. It is a thin wrapper over sidb.Open; it does
// not implement term lookup.
package main

import (
	"fmt"
	"os"

	"github.com/mbarakaja/sasigo/sidb"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <index-file>\n", os.Args[0])
		os.Exit(2)
	}

	if err := dump(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dump(path string) error {
	info, err := sidb.Open(path)
	if err != nil {
		return err
	}

	h := info.Header
	fmt.Printf("version:    %s\n", h.Version)
	fmt.Printf("discipline: %s\n", h.Discipline)
	fmt.Printf("mode:       %s\n", h.Mode)
	fmt.Printf("min term:   %q\n", h.MinTerm)
	fmt.Printf("max term:   %q\n", h.MaxTerm)
	fmt.Printf("min key:    %q\n", h.MinKey)
	fmt.Printf("max key:    %q\n", h.MaxKey)

	fmt.Printf("pointer levels: %d\n", len(info.PointerLevels))
	for i, lvl := range info.PointerLevels {
		fmt.Printf("  level %d: %d blocks\n", i, len(lvl.BlockOffsets))
	}
	fmt.Printf("data level: %d blocks\n", len(info.DataLevel.BlockOffsets))
	if info.DataLevel.SuperBlockOffsets != nil {
		fmt.Printf("data level: %d super blocks\n", len(info.DataLevel.SuperBlockOffsets))
	}

	return nil
}
