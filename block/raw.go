package block

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Size is the fixed block size in bytes (spec §6: BLOCK_SIZE = 4096).
// Every block, super-block, and data-region record ends on a multiple
// of Size.
const Size = 4096

// rawBuilder holds the bookkeeping shared by every block flavor in
// this package: a growing payload buffer and the offset table
// pointing into it. Both the plain Encoder and the DataEncoder embed
// one rather than duplicating the count/offset-table framing.
type rawBuilder struct {
	payload bytes.Buffer
	offsets []uint16
}

// headerSize is the byte cost of the count field plus the offset
// table, as if extraOffsets more entries were appended.
func (r *rawBuilder) headerSize(extraOffsets int) int {
	return 4 + 2*(len(r.offsets)+extraOffsets)
}

func (r *rawBuilder) payloadLen() int { return r.payload.Len() }

func (r *rawBuilder) Count() int { return len(r.offsets) }

func (r *rawBuilder) Empty() bool { return len(r.offsets) == 0 }

func (r *rawBuilder) recordOffset() error {
	if r.payload.Len() > 0xFFFF {
		return fmt.Errorf("block: payload offset %d overflows uint16", r.payload.Len())
	}
	r.offsets = append(r.offsets, uint16(r.payload.Len()))
	return nil
}

func (r *rawBuilder) Payload() *bytes.Buffer { return &r.payload }

// flushHeaderAndPayload writes count, the offset table, then the
// payload bytes, returning the total bytes written.
func (r *rawBuilder) flushHeaderAndPayload(out io.Writer) (int, error) {
	if err := binary.Write(out, binary.LittleEndian, uint32(len(r.offsets))); err != nil {
		return 0, err
	}
	for _, off := range r.offsets {
		if err := binary.Write(out, binary.LittleEndian, off); err != nil {
			return 0, err
		}
	}
	n, err := out.Write(r.payload.Bytes())
	if err != nil {
		return 0, err
	}
	return 4 + 2*len(r.offsets) + n, nil
}

func (r *rawBuilder) reset() {
	r.payload.Reset()
	r.offsets = r.offsets[:0]
}

// Pad writes zero bytes to out so that written (the byte count
// accumulated since the start of the current block-aligned region)
// becomes a multiple of Size.
func Pad(out io.Writer, written int) error {
	rem := written % Size
	if rem == 0 {
		return nil
	}
	_, err := out.Write(make([]byte, Size-rem))
	return err
}
