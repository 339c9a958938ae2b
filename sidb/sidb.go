// Package sidb is the minimal reader-side bootstrap described in
// SPEC_FULL.md §5.2: it decodes just enough of a builder-written index
// file — the header block and the footer's level-metadata section — to
// assert the round-trip properties of spec.md §8. It is not a
// query-time reader; there is no term lookup or key resolution here,
// only structural decode of what SSIBuilder.Finish wrote.
package sidb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/mbarakaja/sasigo/block"
	"github.com/mbarakaja/sasigo/sitype"
	"github.com/mbarakaja/sasigo/tokentree"
)

// Header mirrors the fields SSIBuilder.writeHeader encodes.
type Header struct {
	Version    string
	Discipline sitype.Discipline
	MinTerm    []byte
	MaxTerm    []byte
	MinKey     []byte
	MaxKey     []byte
	Mode       string
}

// LevelMeta is one level's block-offset table, plus the super-block
// offset table and bloom-filter flag when the level is the
// SPARSE-mode data level.
type LevelMeta struct {
	BlockOffsets      []int64
	SuperBlockOffsets []int64 // nil unless this is a SPARSE data level
	BloomEnabled      bool    // only meaningful when SuperBlockOffsets != nil
}

// Info is the fully decoded bootstrap: the header plus the footer's
// level metadata, top pointer level first, data level last — the
// order the footer stores them in, which is the reverse of the order
// Finish builds the cascade.
type Info struct {
	Header        Header
	PointerLevels []LevelMeta // index 0 is the tallest level
	DataLevel     LevelMeta
}

func readLengthPrefixedBytes(r io.Reader) ([]byte, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readLengthPrefixedString(r io.Reader) (string, error) {
	b, err := readLengthPrefixedBytes(r)
	return string(b), err
}

func readHeader(r io.Reader) (Header, error) {
	var h Header

	version, err := readLengthPrefixedString(r)
	if err != nil {
		return h, fmt.Errorf("sidb: read version: %w", err)
	}
	var discipline int16
	if err := binary.Read(r, binary.LittleEndian, &discipline); err != nil {
		return h, fmt.Errorf("sidb: read discipline: %w", err)
	}
	minTerm, err := readLengthPrefixedBytes(r)
	if err != nil {
		return h, fmt.Errorf("sidb: read min term: %w", err)
	}
	maxTerm, err := readLengthPrefixedBytes(r)
	if err != nil {
		return h, fmt.Errorf("sidb: read max term: %w", err)
	}
	minKey, err := readLengthPrefixedBytes(r)
	if err != nil {
		return h, fmt.Errorf("sidb: read min key: %w", err)
	}
	maxKey, err := readLengthPrefixedBytes(r)
	if err != nil {
		return h, fmt.Errorf("sidb: read max key: %w", err)
	}
	mode, err := readLengthPrefixedString(r)
	if err != nil {
		return h, fmt.Errorf("sidb: read mode: %w", err)
	}

	h.Version = version
	h.Discipline = sitype.Discipline(discipline)
	h.MinTerm = minTerm
	h.MaxTerm = maxTerm
	h.MinKey = minKey
	h.MaxKey = maxKey
	h.Mode = mode
	return h, nil
}

func readLevelMeta(r io.Reader, withSuperBlocks bool) (LevelMeta, error) {
	var lm LevelMeta

	var blockCount uint32
	if err := binary.Read(r, binary.LittleEndian, &blockCount); err != nil {
		return lm, fmt.Errorf("sidb: read block count: %w", err)
	}
	lm.BlockOffsets = make([]int64, blockCount)
	for i := range lm.BlockOffsets {
		if err := binary.Read(r, binary.LittleEndian, &lm.BlockOffsets[i]); err != nil {
			return lm, fmt.Errorf("sidb: read block offset %d: %w", i, err)
		}
	}

	if !withSuperBlocks {
		return lm, nil
	}

	var superCount uint32
	if err := binary.Read(r, binary.LittleEndian, &superCount); err != nil {
		return lm, fmt.Errorf("sidb: read super-block count: %w", err)
	}
	lm.SuperBlockOffsets = make([]int64, superCount)
	for i := range lm.SuperBlockOffsets {
		if err := binary.Read(r, binary.LittleEndian, &lm.SuperBlockOffsets[i]); err != nil {
			return lm, fmt.Errorf("sidb: read super-block offset %d: %w", i, err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &lm.BloomEnabled); err != nil {
		return lm, fmt.Errorf("sidb: read bloom-enabled flag: %w", err)
	}
	return lm, nil
}

// ReadSuperBlock decodes the combined token tree stored at one
// super-block offset within a fully-buffered index file, plus its
// bloom filter if bloomEnabled (from the owning LevelMeta.BloomEnabled)
// is set. The bloom filter immediately follows the tree body, written
// by level.DataWriter.flushSuperBlock.
func ReadSuperBlock(data []byte, offset int64, bloomEnabled bool) (*tokentree.Tree, *bloom.BloomFilter, error) {
	r := bytes.NewReader(data[offset:])

	tree, err := tokentree.Read(r)
	if err != nil {
		return nil, nil, fmt.Errorf("sidb: read super-block tree at %d: %w", offset, err)
	}
	if !bloomEnabled {
		return tree, nil, nil
	}

	var bf bloom.BloomFilter
	if _, err := bf.ReadFrom(r); err != nil {
		return nil, nil, fmt.Errorf("sidb: read super-block bloom filter at %d: %w", offset, err)
	}
	return tree, &bf, nil
}

// Open decodes the header and footer of the index file at path. It
// reads the whole file into memory: this is a test/inspection helper,
// not the basis of a production query path (spec.md §1's query-time
// reader remains an out-of-scope external collaborator).
func Open(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sidb: open %q: %w", path, err)
	}
	return Decode(data)
}

// Decode parses a fully-buffered index file's header and footer.
func Decode(data []byte) (*Info, error) {
	if len(data) < block.Size+8 {
		return nil, fmt.Errorf("sidb: file too small (%d bytes) to hold header + footer trailer", len(data))
	}

	header, err := readHeader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var levelIndexPosition int64
	trailer := data[len(data)-8:]
	if err := binary.Read(bytes.NewReader(trailer), binary.LittleEndian, &levelIndexPosition); err != nil {
		return nil, fmt.Errorf("sidb: read levels-index trailer: %w", err)
	}
	if levelIndexPosition < 0 || levelIndexPosition > int64(len(data))-8 {
		return nil, fmt.Errorf("sidb: levels-index position %d out of range", levelIndexPosition)
	}

	body := bytes.NewReader(data[levelIndexPosition : len(data)-8])

	var levelCount uint32
	if err := binary.Read(body, binary.LittleEndian, &levelCount); err != nil {
		return nil, fmt.Errorf("sidb: read level count: %w", err)
	}

	pointerLevels := make([]LevelMeta, levelCount)
	for i := range pointerLevels {
		lm, err := readLevelMeta(body, false)
		if err != nil {
			return nil, fmt.Errorf("sidb: pointer level %d: %w", i, err)
		}
		pointerLevels[i] = lm
	}

	dataLevel, err := readLevelMeta(body, header.Mode == "SPARSE")
	if err != nil {
		return nil, fmt.Errorf("sidb: data level: %w", err)
	}

	return &Info{Header: header, PointerLevels: pointerLevels, DataLevel: dataLevel}, nil
}
