// Package builder is the file finisher of spec.md §4.G: it
// orchestrates the multi-level cascade and writes the header, the
// aligned data region, and the footer of one immutable on-disk
// secondary-index file.
package builder

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/mbarakaja/sasigo/accumulator"
	"github.com/mbarakaja/sasigo/block"
	"github.com/mbarakaja/sasigo/level"
	"github.com/mbarakaja/sasigo/sifile"
	"github.com/mbarakaja/sasigo/simode"
	"github.com/mbarakaja/sasigo/sitype"
	"github.com/mbarakaja/sasigo/suffixarray"
)

// SSIBuilder accumulates (term, key, key-position) triples and, on a
// single call to Finish, writes them out as one block-structured
// index file. Created with immutable comparators and mode; mutated by
// repeated Add; consumed by one call to Finish (spec §3 "Lifecycle").
type SSIBuilder struct {
	comparator sitype.Comparator
	discipline sitype.Discipline
	mode       simode.Mode
	opts       options

	acc *accumulator.Accumulator
}

// New returns a builder for comparator/mode, comparing keys with
// keyCmp (nil defaults to bytes.Compare, per accumulator.New).
func New(comparator sitype.Comparator, keyCmp accumulator.KeyComparator, mode simode.Mode, opts ...Option) *SSIBuilder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &SSIBuilder{
		comparator: comparator,
		discipline: sitype.Classify(comparator),
		mode:       mode,
		opts:       o,
		acc:        accumulator.New(keyCmp),
	}
}

// Add appends one (term, key, key-position) triple. Never fails;
// oversized terms are logged and dropped by the accumulator. Returns
// the builder for chaining.
func (b *SSIBuilder) Add(term, key []byte, keyPosition int64) *SSIBuilder {
	b.acc.Add(term, key, keyPosition)
	return b
}

// dataLevel is the common surface of level.Writer[block.DataTerm]
// (ORIGINAL/SUFFIX) and level.DataWriter (SPARSE), letting Finish
// drive either without caring which it has.
type dataLevel interface {
	Add(block.DataTerm) (*block.PointerTerm, error)
	FinalFlush() error
	FlushMetadata(io.Writer) error
}

// Finish writes the accumulated terms to path as one index file.
// Returns false without creating a file if no terms were accepted.
// All I/O failures surface as a *WriteError.
func (b *SSIBuilder) Finish(path string) (bool, error) {
	if b.acc.IsEmpty() {
		return false, nil
	}

	transform := suffixarray.New(b.acc.Terms(), b.mode, b.comparator)

	file, err := os.Create(path)
	if err != nil {
		return false, wrapWrite(path, err)
	}
	defer file.Close()

	out := sifile.NewCountingWriter(file)

	if err := b.writeHeader(out, transform.MinTerm(), transform.MaxTerm()); err != nil {
		return false, wrapWrite(path, err)
	}

	dataLvl := b.newDataLevel(out)

	var pointerLevels []*level.Writer[block.PointerTerm]

	for transform.HasNext() {
		term, postings := transform.Next()
		dt := block.DataTerm{
			Term:     block.Term{Bytes: term, Discipline: b.discipline},
			Postings: postings,
		}

		promoted, err := dataLvl.Add(dt)
		if err != nil {
			return false, wrapWrite(path, err)
		}

		for height := 0; promoted != nil; height++ {
			if height >= len(pointerLevels) {
				pointerLevels = append(pointerLevels, level.New[block.PointerTerm](out, block.NewEncoder[block.PointerTerm](), b.discipline))
			}
			promoted, err = pointerLevels[height].Add(*promoted)
			if err != nil {
				return false, wrapWrite(path, err)
			}
		}
	}

	if err := dataLvl.FinalFlush(); err != nil {
		return false, wrapWrite(path, err)
	}
	for _, pl := range pointerLevels {
		if err := pl.FinalFlush(); err != nil {
			return false, wrapWrite(path, err)
		}
	}

	if err := b.writeFooter(out, dataLvl, pointerLevels); err != nil {
		return false, wrapWrite(path, err)
	}

	return true, nil
}

func (b *SSIBuilder) newDataLevel(out *sifile.CountingWriter) dataLevel {
	enc := block.NewDataEncoder(b.mode)
	if b.mode != simode.Sparse {
		return level.New[block.DataTerm](out, enc, b.discipline)
	}

	var dwOpts []level.DataWriterOption
	if b.opts.bloomEnabled {
		dwOpts = append(dwOpts, level.WithSuperBlockBloomFilter(b.opts.bloomEstimated, b.opts.bloomFPRate))
	}
	return level.NewDataWriter(out, enc, b.discipline, dwOpts...)
}

// writeFooter records the levels-metadata position, the level count,
// each pointer level's metadata from the top down, the data level's
// metadata, then the trailer position itself. Spec §4.G "Footer".
func (b *SSIBuilder) writeFooter(out *sifile.CountingWriter, dataLvl dataLevel, pointerLevels []*level.Writer[block.PointerTerm]) error {
	levelIndexPosition := out.Pos()

	if err := binary.Write(out, binary.LittleEndian, uint32(len(pointerLevels))); err != nil {
		return err
	}
	for i := len(pointerLevels) - 1; i >= 0; i-- {
		if err := pointerLevels[i].FlushMetadata(out); err != nil {
			return err
		}
	}
	if err := dataLvl.FlushMetadata(out); err != nil {
		return err
	}

	return binary.Write(out, binary.LittleEndian, levelIndexPosition)
}
