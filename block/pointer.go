package block

import (
	"encoding/binary"
	"io"
)

// PointerTerm is a (term, child-block-index) pair: term is the last
// term of the referenced child block (separator-by-ceiling);
// ChildBlockIndex is that block's ordinal in its level. Spec §3.
type PointerTerm struct {
	Term            Term
	ChildBlockIndex uint32
}

func (p PointerTerm) SerializedSize() int {
	return p.Term.SerializedSize() + 4
}

func (p PointerTerm) WriteTo(w io.Writer) error {
	if err := p.Term.WriteTo(w); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, p.ChildBlockIndex)
}

// TermBytes satisfies level.Keyed: a pointer term promoted further up
// the cascade is re-keyed by its own term bytes.
func (p PointerTerm) TermBytes() []byte { return p.Term.Bytes }
