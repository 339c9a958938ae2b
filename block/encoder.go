package block

import "io"

// Encoder packs Entry values into a fixed Size-byte block: a 4-byte
// count, a count×2-byte offset table into the payload, then the
// payload, zero-padded to the boundary. Spec §4.D. Used directly by
// pointer levels (E = PointerTerm); the data level uses DataEncoder
// instead, which needs per-entry posting-list logic this type has no
// business knowing about.
type Encoder[E Entry] struct {
	raw rawBuilder
}

func NewEncoder[E Entry]() *Encoder[E] {
	return &Encoder[E]{}
}

// HasSpaceFor reports whether entry fits in the block without
// exceeding Size.
func (e *Encoder[E]) HasSpaceFor(entry E) bool {
	return e.raw.headerSize(1)+e.raw.payloadLen()+entry.SerializedSize() < Size
}

// Add records entry's payload offset then serializes it.
func (e *Encoder[E]) Add(entry E) error {
	if err := e.raw.recordOffset(); err != nil {
		return err
	}
	return entry.WriteTo(e.raw.Payload())
}

// Count reports the number of entries added since the last flush.
func (e *Encoder[E]) Count() int { return e.raw.Count() }

// Empty reports whether any entry has been added since the last flush.
func (e *Encoder[E]) Empty() bool { return e.raw.Empty() }

// FlushAndClear writes count, the offset table, and the payload to
// out, zero-pads to Size, then resets the encoder for reuse.
func (e *Encoder[E]) FlushAndClear(out io.Writer) error {
	written, err := e.raw.flushHeaderAndPayload(out)
	if err != nil {
		return err
	}
	if err := Pad(out, written); err != nil {
		return err
	}
	e.raw.reset()
	return nil
}
