package block

import "io"

// Entry is anything a plain block encoder can pack into its payload
// region: something that knows its own serialized byte size and can
// write itself out.
type Entry interface {
	SerializedSize() int
	WriteTo(w io.Writer) error
}
