package level

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/mbarakaja/sasigo/block"
	"github.com/mbarakaja/sasigo/sifile"
	"github.com/mbarakaja/sasigo/sitype"
)

func termEntry(s string) block.PointerTerm {
	return block.PointerTerm{Term: block.Term{Bytes: []byte(s), Discipline: sitype.Variable}}
}

func TestWriterPromotesOnBlockFlush(t *testing.T) {
	var buf bytes.Buffer
	out := sifile.NewCountingWriter(&buf)
	w := New[block.PointerTerm](out, block.NewEncoder[block.PointerTerm](), sitype.Variable)

	var promotions int
	for i := 0; i < 2000; i++ {
		promoted, err := w.Add(termEntry(fmt.Sprintf("term-%05d", i)))
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		if promoted != nil {
			promotions++
		}
	}

	if promotions == 0 {
		t.Fatalf("expected at least one promotion across 2000 small entries")
	}
	if w.BlockCount() == 0 {
		t.Fatalf("BlockCount() = 0 after enough entries to fill a block")
	}
}

func TestWriterFinalFlushOnEmptyIsNoop(t *testing.T) {
	var buf bytes.Buffer
	out := sifile.NewCountingWriter(&buf)
	w := New[block.PointerTerm](out, block.NewEncoder[block.PointerTerm](), sitype.Variable)

	if err := w.FinalFlush(); err != nil {
		t.Fatalf("FinalFlush on empty writer: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("FinalFlush on an empty writer wrote %d bytes, want 0", buf.Len())
	}
}

func TestWriterFinalFlushWritesPartialBlock(t *testing.T) {
	var buf bytes.Buffer
	out := sifile.NewCountingWriter(&buf)
	w := New[block.PointerTerm](out, block.NewEncoder[block.PointerTerm](), sitype.Variable)

	if _, err := w.Add(termEntry("only-one")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := w.FinalFlush(); err != nil {
		t.Fatalf("FinalFlush: %v", err)
	}

	if w.BlockCount() != 1 {
		t.Fatalf("BlockCount() = %d after FinalFlush, want 1", w.BlockCount())
	}
	if buf.Len()%block.Size != 0 {
		t.Fatalf("final block is %d bytes, not block-aligned", buf.Len())
	}
}

func TestWriterFlushMetadata(t *testing.T) {
	var buf bytes.Buffer
	out := sifile.NewCountingWriter(&buf)
	w := New[block.PointerTerm](out, block.NewEncoder[block.PointerTerm](), sitype.Variable)

	if _, err := w.Add(termEntry("a")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := w.FinalFlush(); err != nil {
		t.Fatalf("FinalFlush: %v", err)
	}

	var meta bytes.Buffer
	if err := w.FlushMetadata(&meta); err != nil {
		t.Fatalf("FlushMetadata: %v", err)
	}
	// 4-byte count + 8 bytes per offset.
	if want := 4 + 8*w.BlockCount(); meta.Len() != want {
		t.Fatalf("FlushMetadata wrote %d bytes, want %d", meta.Len(), want)
	}
}
