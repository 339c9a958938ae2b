package block

import "github.com/mbarakaja/sasigo/tokentree"

// DataTerm is the unit the data-block encoder consumes: a term paired
// with its postings container. Unlike PointerTerm it does not
// implement Entry directly — how it serializes depends on the mode
// and running offset state held by DataEncoder, not on the term
// alone.
type DataTerm struct {
	Term     Term
	Postings *tokentree.Tree
}

// TermBytes satisfies level.Keyed.
func (d DataTerm) TermBytes() []byte { return d.Term.Bytes }
