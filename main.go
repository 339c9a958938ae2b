// Command sasigo builds one on-disk secondary-index file from a list
// of (term, key, key-position) triples read from stdin. It exists to
// exercise builder.SSIBuilder end to end; see cmd/sasigo-dump for
// inspecting the file it produces.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mbarakaja/sasigo/builder"
	"github.com/mbarakaja/sasigo/simode"
	"github.com/mbarakaja/sasigo/sitype"
)

var comparators = map[string]sitype.Comparator{
	"int32":       sitype.ComparatorInt32,
	"float32":     sitype.ComparatorFloat32,
	"int64":       sitype.ComparatorInt64,
	"double":      sitype.ComparatorDouble,
	"timestamp":   sitype.ComparatorTimestamp,
	"date":        sitype.ComparatorDate,
	"uuid-time":   sitype.ComparatorUUIDTimeOrdered,
	"uuid-random": sitype.ComparatorUUIDRandom,
	"utf8":        sitype.ComparatorUTF8,
	"ascii":       sitype.ComparatorASCII,
	"bytes":       sitype.ComparatorBytes,
}

var modes = map[string]simode.Mode{
	"original": simode.Original,
	"suffix":   simode.Suffix,
	"sparse":   simode.Sparse,
}

func main() {
	out := flag.String("out", "index.si", "path to write the built index file")
	comparatorName := flag.String("comparator", "utf8", "term comparator: int32, float32, int64, double, timestamp, date, uuid-time, uuid-random, utf8, ascii, bytes")
	modeName := flag.String("mode", "original", "build mode: original, suffix, sparse")
	bloom := flag.Bool("bloom", false, "enable the per-super-block bloom filter (sparse mode only)")
	flag.Parse()

	if err := run(*out, *comparatorName, *modeName, *bloom); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run reads tab-separated "term\tkey\tposition" lines from stdin,
// feeds each into a builder, and finishes it to out.
func run(out, comparatorName, modeName string, bloom bool) error {
	comparator, ok := comparators[comparatorName]
	if !ok {
		return fmt.Errorf("sasigo: unknown comparator %q", comparatorName)
	}
	mode, ok := modes[modeName]
	if !ok {
		return fmt.Errorf("sasigo: unknown mode %q", modeName)
	}

	var opts []builder.Option
	if bloom {
		opts = append(opts, builder.WithSuperBlockBloomFilter(100_000, 0.01))
	}
	b := builder.New(comparator, nil, mode, opts...)

	scanner := bufio.NewScanner(os.Stdin)
	line := 0
	for scanner.Scan() {
		line++
		term, key, position, err := parseLine(scanner.Text())
		if err != nil {
			return fmt.Errorf("sasigo: line %d: %w", line, err)
		}
		b.Add(term, key, position)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("sasigo: reading stdin: %w", err)
	}

	wrote, err := b.Finish(out)
	if err != nil {
		return err
	}
	if !wrote {
		return fmt.Errorf("sasigo: no terms accepted, %q not written", out)
	}

	fmt.Printf("wrote %s\n", out)
	return nil
}

func parseLine(s string) (term, key []byte, position int64, err error) {
	fields := strings.Split(s, "\t")
	if len(fields) != 3 {
		return nil, nil, 0, fmt.Errorf("expected 3 tab-separated fields, got %d", len(fields))
	}
	position, err = strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("bad key position %q: %w", fields[2], err)
	}
	return []byte(fields[0]), []byte(fields[1]), position, nil
}
