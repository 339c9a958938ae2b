package builder

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/mbarakaja/sasigo/simode"
	"github.com/mbarakaja/sasigo/sidb"
	"github.com/mbarakaja/sasigo/sitype"
)

func TestFinishReturnsFalseForEmptyBuilder(t *testing.T) {
	b := New(sitype.ComparatorUTF8, nil, simode.Original)

	dir := t.TempDir()
	path := filepath.Join(dir, "empty.si")

	wrote, err := b.Finish(path)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if wrote {
		t.Fatalf("Finish() = true for a builder with no Add calls")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Finish wrote a file for an empty builder")
	}
}

func TestFinishIntegerTermsOriginalMode(t *testing.T) {
	b := New(sitype.ComparatorInt64, nil, simode.Original)
	for i := 0; i < 50; i++ {
		b.Add([]byte{byte(i)}, []byte{byte(i)}, int64(i))
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "int.si")

	wrote, err := b.Finish(path)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if !wrote {
		t.Fatalf("Finish() = false for a non-empty builder")
	}

	info, err := sidb.Open(path)
	if err != nil {
		t.Fatalf("sidb.Open: %v", err)
	}
	if info.Header.Mode != "ORIGINAL" {
		t.Fatalf("header mode = %q, want ORIGINAL", info.Header.Mode)
	}
	if info.Header.Discipline != sitype.Long {
		t.Fatalf("header discipline = %v, want Long", info.Header.Discipline)
	}
	if info.DataLevel.SuperBlockOffsets != nil {
		t.Fatalf("ORIGINAL mode data level should carry no super-block table")
	}
}

func TestFinishTextTermsSuffixMode(t *testing.T) {
	b := New(sitype.ComparatorUTF8, nil, simode.Suffix)
	words := []string{"apple", "ample", "maple", "staple"}
	for i, w := range words {
		b.Add([]byte(w), []byte(w), int64(i))
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "suffix.si")

	if _, err := b.Finish(path); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	info, err := sidb.Open(path)
	if err != nil {
		t.Fatalf("sidb.Open: %v", err)
	}
	if info.Header.Mode != "SUFFIX" {
		t.Fatalf("header mode = %q, want SUFFIX", info.Header.Mode)
	}
}

func TestFinishSparseModeEmitsSuperBlockTable(t *testing.T) {
	b := New(sitype.ComparatorUTF8, nil, simode.Sparse, WithSuperBlockBloomFilter(10_000, 0.01))

	big := make([]byte, 1000)
	for i := 0; i < 200; i++ {
		term := append([]byte{byte(i), byte(i >> 8)}, big...)
		b.Add(term, []byte{byte(i)}, int64(i))
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "sparse.si")

	if _, err := b.Finish(path); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	info, err := sidb.Open(path)
	if err != nil {
		t.Fatalf("sidb.Open: %v", err)
	}
	if info.Header.Mode != "SPARSE" {
		t.Fatalf("header mode = %q, want SPARSE", info.Header.Mode)
	}
	if len(info.DataLevel.BlockOffsets) == 0 {
		t.Fatalf("expected at least one data block")
	}
	if len(info.DataLevel.SuperBlockOffsets) == 0 {
		t.Fatalf("expected at least one super block")
	}
	if !info.DataLevel.BloomEnabled {
		t.Fatalf("BloomEnabled = false, want true (builder was given WithSuperBlockBloomFilter)")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	tree, bf, err := sidb.ReadSuperBlock(data, info.DataLevel.SuperBlockOffsets[0], info.DataLevel.BloomEnabled)
	if err != nil {
		t.Fatalf("sidb.ReadSuperBlock: %v", err)
	}
	if tree.TokenCount() == 0 {
		t.Fatalf("first super block's tree has no tokens")
	}
	if bf == nil {
		t.Fatalf("ReadSuperBlock returned a nil bloom filter despite BloomEnabled")
	}
}

func TestFinishPromotionCascade(t *testing.T) {
	b := New(sitype.ComparatorUTF8, nil, simode.Original)

	big := make([]byte, 1000)
	for i := 0; i < 40; i++ {
		term := append([]byte{byte(i), byte(i >> 8)}, big...)
		b.Add(term, []byte{byte(i)}, int64(i))
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "promote.si")

	if _, err := b.Finish(path); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	info, err := sidb.Open(path)
	if err != nil {
		t.Fatalf("sidb.Open: %v", err)
	}
	if len(info.DataLevel.BlockOffsets) < 2 {
		t.Fatalf("expected enough large terms to produce multiple data blocks, got %d", len(info.DataLevel.BlockOffsets))
	}
	if len(info.PointerLevels) == 0 {
		t.Fatalf("expected at least one pointer level promoted above the data level")
	}
	// The bottom pointer level gets one promoted separator per data
	// block flushed mid-stream; the final (possibly partial) data
	// block is flushed by FinalFlush, which never promotes. So the
	// bottom pointer level's entry count is one less than the data
	// block count. Entries are summed from each block's 4-byte count.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	entries := 0
	for _, off := range info.PointerLevels[len(info.PointerLevels)-1].BlockOffsets {
		entries += int(binary.LittleEndian.Uint32(data[off : off+4]))
	}
	if got, want := entries, len(info.DataLevel.BlockOffsets)-1; got != want {
		t.Fatalf("bottom pointer level has %d entries, want %d", got, want)
	}
}

func TestFinishHeaderKeyRange(t *testing.T) {
	b := New(sitype.ComparatorUTF8, nil, simode.Original)
	b.Add([]byte("t1"), []byte("m"), 1)
	b.Add([]byte("t2"), []byte("a"), 2)
	b.Add([]byte("t3"), []byte("z"), 3)

	dir := t.TempDir()
	path := filepath.Join(dir, "keyrange.si")
	if _, err := b.Finish(path); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	info, err := sidb.Open(path)
	if err != nil {
		t.Fatalf("sidb.Open: %v", err)
	}
	if string(info.Header.MinKey) != "a" || string(info.Header.MaxKey) != "z" {
		t.Fatalf("header key range = [%q, %q], want [a, z]", info.Header.MinKey, info.Header.MaxKey)
	}
	if string(info.Header.MinTerm) != "t1" || string(info.Header.MaxTerm) != "t3" {
		t.Fatalf("header term range = [%q, %q], want [t1, t3]", info.Header.MinTerm, info.Header.MaxTerm)
	}
}
