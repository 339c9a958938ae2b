package builder

import (
	"encoding/binary"
	"io"

	"github.com/mbarakaja/sasigo/block"
	"github.com/mbarakaja/sasigo/sifile"
)

func writeLengthPrefixedString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func writeLengthPrefixedBytes(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint16(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// writeHeader writes the block-aligned header described in spec §4.G:
// version, term-size discipline, min/max term, min/max key, mode
// name, then zero-padding to the block boundary.
func (b *SSIBuilder) writeHeader(out *sifile.CountingWriter, minTerm, maxTerm []byte) error {
	start := out.Pos()

	if err := writeLengthPrefixedString(out, b.opts.version); err != nil {
		return err
	}
	if err := binary.Write(out, binary.LittleEndian, int16(b.discipline)); err != nil {
		return err
	}
	if err := writeLengthPrefixedBytes(out, minTerm); err != nil {
		return err
	}
	if err := writeLengthPrefixedBytes(out, maxTerm); err != nil {
		return err
	}
	if err := writeLengthPrefixedBytes(out, b.acc.MinKey()); err != nil {
		return err
	}
	if err := writeLengthPrefixedBytes(out, b.acc.MaxKey()); err != nil {
		return err
	}
	if err := writeLengthPrefixedString(out, b.mode.String()); err != nil {
		return err
	}

	written := int(out.Pos() - start)
	return block.Pad(out, written)
}
