package level

import (
	"encoding/binary"
	"io"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/mbarakaja/sasigo/block"
	"github.com/mbarakaja/sasigo/sifile"
	"github.com/mbarakaja/sasigo/sitype"
	"github.com/mbarakaja/sasigo/tokentree"
)

// SuperBlockSize is the number of consecutive data blocks a combined
// token tree covers in SPARSE mode. Spec §6.
const SuperBlockSize = 64

// DataWriter is the data-level specialization of Writer described in
// spec §4.F: on top of the ordinary block/promotion bookkeeping it
// rolls a combined token tree over every SuperBlockSize data blocks.
type DataWriter struct {
	*Writer[block.DataTerm]

	superBlockOffsets []int64
	dataBlocksCnt      int
	superBlockTree     *tokentree.Tree

	// bloom is the supplemental per-super-block bloom filter (SPEC_FULL
	// §3): a reader can check it before decoding a combined-index body
	// at all. nil unless WithSuperBlockBloomFilter is supplied.
	bloom          *bloom.BloomFilter
	bloomFPRate    float64
	bloomEstimated uint
}

// DataWriterOption configures optional DataWriter behavior.
type DataWriterOption func(*DataWriter)

// WithSuperBlockBloomFilter enables a rolling bloom filter over each
// super block's tokens, sized for estimatedTokens entries at the
// given false-positive rate.
func WithSuperBlockBloomFilter(estimatedTokens uint, fpRate float64) DataWriterOption {
	return func(dw *DataWriter) {
		dw.bloomEstimated = estimatedTokens
		dw.bloomFPRate = fpRate
		dw.bloom = bloom.NewWithEstimates(estimatedTokens, fpRate)
	}
}

// NewDataWriter returns a DataWriter appending to out via enc.
func NewDataWriter(out *sifile.CountingWriter, enc *block.DataEncoder, discipline sitype.Discipline, opts ...DataWriterOption) *DataWriter {
	dw := &DataWriter{
		superBlockTree: tokentree.New(),
	}
	dw.Writer = New[block.DataTerm](out, enc, discipline)
	dw.Writer.onBlockFlush = dw.onDataBlockFlush

	for _, opt := range opts {
		opt(dw)
	}

	return dw
}

func (dw *DataWriter) onDataBlockFlush() error {
	dw.dataBlocksCnt++
	return dw.flushSuperBlock(false)
}

// Add appends entry, then merges its tokens into the rolling
// super-block tree (and bloom filter, if enabled).
func (dw *DataWriter) Add(entry block.DataTerm) (*block.PointerTerm, error) {
	toPromote, err := dw.Writer.Add(entry)
	if err != nil {
		return nil, err
	}

	dw.superBlockTree.Merge(entry.Postings)
	if dw.bloom != nil {
		var buf [8]byte
		for token := range entry.Postings.Tokens() {
			binary.LittleEndian.PutUint64(buf[:], uint64(token))
			dw.bloom.Add(buf[:])
		}
	}

	return toPromote, nil
}

// flushSuperBlock acts iff dataBlocksCnt has reached SuperBlockSize,
// or force is set and the rolling tree is non-empty: it records the
// current position, writes the finalized tree body immediately
// followed by the rolling bloom filter's own serialized form (if
// enabled), block-aligns over both, then resets the counter, tree,
// and bloom filter for the next super block.
func (dw *DataWriter) flushSuperBlock(force bool) error {
	nonEmpty := dw.superBlockTree.TokenCount() > 0
	if dw.dataBlocksCnt != SuperBlockSize && !(force && nonEmpty) {
		return nil
	}

	pos := dw.out.Pos()
	dw.superBlockOffsets = append(dw.superBlockOffsets, pos)

	if err := dw.superBlockTree.Finalize(dw.out); err != nil {
		return err
	}
	written := dw.superBlockTree.SerializedSize()

	if dw.bloom != nil {
		n, err := dw.bloom.WriteTo(dw.out)
		if err != nil {
			return err
		}
		written += int(n)
	}

	if err := block.Pad(dw.out, written); err != nil {
		return err
	}

	dw.dataBlocksCnt = 0
	dw.superBlockTree = tokentree.New()
	if dw.bloom != nil {
		dw.bloom = bloom.NewWithEstimates(dw.bloomEstimated, dw.bloomFPRate)
	}
	return nil
}

// FinalFlush flushes any partial data block, then forces a final
// super-block emission if any tokens remain unflushed.
func (dw *DataWriter) FinalFlush() error {
	if err := dw.Writer.FinalFlush(); err != nil {
		return err
	}
	return dw.flushSuperBlock(true)
}

// FlushMetadata additionally emits the super-block offset table, then
// a one-byte flag telling a reader whether each super-block body is
// immediately followed by a serialized bloom filter (so it knows
// whether to call bloom.ReadFrom after decoding the token tree).
func (dw *DataWriter) FlushMetadata(out io.Writer) error {
	if err := dw.Writer.FlushMetadata(out); err != nil {
		return err
	}
	if err := binary.Write(out, binary.LittleEndian, uint32(len(dw.superBlockOffsets))); err != nil {
		return err
	}
	for _, off := range dw.superBlockOffsets {
		if err := binary.Write(out, binary.LittleEndian, off); err != nil {
			return err
		}
	}
	return binary.Write(out, binary.LittleEndian, dw.bloom != nil)
}

// SuperBlockCount reports the number of super-block bodies written,
// used by tests to check spec §8's ceiling-division invariant.
func (dw *DataWriter) SuperBlockCount() int { return len(dw.superBlockOffsets) }
