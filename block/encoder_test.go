package block

import (
	"bytes"
	"testing"

	"github.com/mbarakaja/sasigo/sitype"
)

func TestEncoderAddAndFlush(t *testing.T) {
	enc := NewEncoder[Term]()
	if !enc.Empty() {
		t.Fatalf("fresh encoder is not empty")
	}

	terms := []Term{
		{Bytes: []byte("alpha"), Discipline: sitype.Variable},
		{Bytes: []byte("beta"), Discipline: sitype.Variable},
	}
	for _, term := range terms {
		if !enc.HasSpaceFor(term) {
			t.Fatalf("HasSpaceFor(%q) = false in an empty block", term.Bytes)
		}
		if err := enc.Add(term); err != nil {
			t.Fatalf("Add(%q): %v", term.Bytes, err)
		}
	}

	if got := enc.Count(); got != 2 {
		t.Fatalf("Count() = %d, want 2", got)
	}

	var buf bytes.Buffer
	if err := enc.FlushAndClear(&buf); err != nil {
		t.Fatalf("FlushAndClear: %v", err)
	}

	if buf.Len()%Size != 0 {
		t.Fatalf("flushed block is %d bytes, not a multiple of Size (%d)", buf.Len(), Size)
	}
	if !enc.Empty() {
		t.Fatalf("encoder not empty after FlushAndClear")
	}
}

func TestEncoderHasSpaceForRejectsOverflow(t *testing.T) {
	enc := NewEncoder[Term]()
	big := Term{Bytes: make([]byte, Size), Discipline: sitype.Variable}
	if enc.HasSpaceFor(big) {
		t.Fatalf("HasSpaceFor reported room for a term as large as the whole block")
	}
}

func TestFixedWidthTermOmitsLengthPrefix(t *testing.T) {
	term := Term{Bytes: []byte{1, 2, 3, 4}, Discipline: sitype.Int}
	if got, want := term.SerializedSize(), 4; got != want {
		t.Fatalf("fixed-width SerializedSize() = %d, want %d", got, want)
	}

	var buf bytes.Buffer
	if err := term.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if buf.Len() != 4 {
		t.Fatalf("fixed-width WriteTo wrote %d bytes, want 4", buf.Len())
	}
}

func TestVariableWidthTermIncludesLengthPrefix(t *testing.T) {
	term := Term{Bytes: []byte("hello"), Discipline: sitype.Variable}
	if got, want := term.SerializedSize(), 7; got != want {
		t.Fatalf("variable-width SerializedSize() = %d, want %d", got, want)
	}
}

func TestPointerTermSerialization(t *testing.T) {
	p := PointerTerm{Term: Term{Bytes: []byte("sep"), Discipline: sitype.Variable}, ChildBlockIndex: 7}
	if got, want := p.SerializedSize(), 2+3+4; got != want {
		t.Fatalf("PointerTerm.SerializedSize() = %d, want %d", got, want)
	}

	var buf bytes.Buffer
	if err := p.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if buf.Len() != p.SerializedSize() {
		t.Fatalf("WriteTo wrote %d bytes, want %d", buf.Len(), p.SerializedSize())
	}

	if string(p.TermBytes()) != "sep" {
		t.Fatalf("TermBytes() = %q, want %q", p.TermBytes(), "sep")
	}
}
