package block

import (
	"encoding/binary"
	"io"

	"github.com/mbarakaja/sasigo/sitype"
)

// Term is a block entry carrying only the raw term bytes. Fixed-width
// terms (Discipline != Variable) omit the length prefix; variable-width
// terms carry a 2-byte length prefix. Spec §4.D.
type Term struct {
	Bytes      []byte
	Discipline sitype.Discipline
}

func (t Term) SerializedSize() int {
	if t.Discipline == sitype.Variable {
		return 2 + len(t.Bytes)
	}
	return len(t.Bytes)
}

func (t Term) WriteTo(w io.Writer) error {
	if t.Discipline == sitype.Variable {
		if err := binary.Write(w, binary.LittleEndian, uint16(len(t.Bytes))); err != nil {
			return err
		}
	}
	_, err := w.Write(t.Bytes)
	return err
}

// TermBytes satisfies level.Keyed so a plain Term can itself be used
// as a level writer's element type where no extra payload is needed.
func (t Term) TermBytes() []byte { return t.Bytes }
