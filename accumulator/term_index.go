package accumulator

import (
	"iter"
	"math/rand"

	"github.com/mbarakaja/sasigo/tokentree"
)

const maxTermIndexLevel = 32

type termIndexNode struct {
	term     string
	postings *tokentree.Tree
	forward  []*termIndexNode
}

// termIndex is an ordered term -> postings skip list, specialized to
// this package's one consumer (Accumulator.terms): string keys and
// *tokentree.Tree values only, no Delete (a build never retracts a
// term once accumulated) and no debug dump. Ascending bottom-level
// iteration is the reason this exists instead of a plain map: it lets
// Terms() hand suffixarray's ORIGINAL transform an already-sorted
// slice instead of sorting at transform time.
type termIndex struct {
	head   *termIndexNode
	levels int
	size   int
}

func newTermIndex() *termIndex {
	return &termIndex{levels: -1, head: &termIndexNode{}}
}

// Size reports the number of distinct terms stored.
func (ti *termIndex) Size() int { return ti.size }

// Get reports the postings tree for term, if present.
func (ti *termIndex) Get(term string) (*tokentree.Tree, bool) {
	curr := ti.head
	for level := ti.levels; level >= 0; level-- {
		for curr.forward[level] != nil && curr.forward[level].term < term {
			curr = curr.forward[level]
		}
		if curr.forward[level] != nil && curr.forward[level].term == term {
			return curr.forward[level].postings, true
		}
	}
	return nil, false
}

func randomTermIndexLevel() int {
	level := 0
	for rand.Int31()&1 == 0 && level < maxTermIndexLevel {
		level++
	}
	return level
}

func (ti *termIndex) growTo(level int) {
	forward := make([]*termIndexNode, level+1)
	copy(forward, ti.head.forward)
	ti.head = &termIndexNode{forward: forward}
	ti.levels = level
}

// Put inserts postings under term, or replaces the existing postings
// pointer if term was already present.
func (ti *termIndex) Put(term string, postings *tokentree.Tree) {
	newLevel := randomTermIndexLevel()
	if newLevel > ti.levels {
		ti.growTo(newLevel)
	}

	updates := make([]*termIndexNode, ti.levels+1)
	curr := ti.head
	for level := ti.levels; level >= 0; level-- {
		for curr.forward[level] != nil && curr.forward[level].term < term {
			curr = curr.forward[level]
		}
		updates[level] = curr
	}

	if curr.forward[0] != nil && curr.forward[0].term == term {
		curr.forward[0].postings = postings
		return
	}

	node := &termIndexNode{term: term, postings: postings, forward: make([]*termIndexNode, newLevel+1)}
	for level := 0; level <= newLevel; level++ {
		node.forward[level] = updates[level].forward[level]
		updates[level].forward[level] = node
	}
	ti.size++
}

// Iterator yields (term, postings) pairs in ascending term order.
func (ti *termIndex) Iterator() iter.Seq2[string, *tokentree.Tree] {
	return func(yield func(string, *tokentree.Tree) bool) {
		if ti.head.forward == nil {
			return
		}
		curr := ti.head.forward[0]
		for curr != nil {
			if !yield(curr.term, curr.postings) {
				return
			}
			curr = curr.forward[0]
		}
	}
}
