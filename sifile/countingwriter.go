// Package sifile holds small file-layout helpers shared between the
// level writer and the file finisher: the two places that need to
// know the current write position of a strictly-sequential output
// stream without seeking (spec §5: "no seeks other than implicit
// stream positioning").
package sifile

import "io"

// CountingWriter wraps an io.Writer and tracks the number of bytes
// written through it, so callers can learn the current write position
// of a strictly sequential output stream without seeking — needed
// because level and builder write to any io.Writer in tests, not just
// *os.File.
type CountingWriter struct {
	w   io.Writer
	pos int64
}

// NewCountingWriter wraps w, starting position count at 0.
func NewCountingWriter(w io.Writer) *CountingWriter {
	return &CountingWriter{w: w}
}

func (c *CountingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.pos += int64(n)
	return n, err
}

// Pos reports the number of bytes written so far.
func (c *CountingWriter) Pos() int64 { return c.pos }
