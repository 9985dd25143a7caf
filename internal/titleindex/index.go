// Package titleindex stores known titles as word paths in a trie and answers
// longest-prefix queries over sentences.
//
// Every root-to-node path spells a word sequence. A node carries tracks only
// when its path is a complete title; nodes without tracks are path segments
// shared by longer titles. Titles with identical word sequences (covers,
// remasters) accumulate on the same node and one of them is picked at random
// on lookup.
package titleindex

import (
	"math/rand/v2"

	"github.com/llehouerou/sentence2songs/internal/track"
)

type node struct {
	word     string
	depth    int // 1-based; children of the root have depth 1
	children map[string]*node
	tracks   []track.Track
}

func newNode(word string, depth int) *node {
	return &node{
		word:     word,
		depth:    depth,
		children: make(map[string]*node),
	}
}

func (n *node) addTrack(t track.Track) {
	n.tracks = append(n.tracks, t)
}

// pick returns one of the node's tracks uniformly at random, or nil.
func (n *node) pick() *track.Track {
	if len(n.tracks) == 0 {
		return nil
	}
	t := n.tracks[rand.IntN(len(n.tracks))]
	return &t
}

// Index is a trie of title words. It is not safe for concurrent use.
type Index struct {
	root   map[string]*node
	tracks int
	nodes  int
}

// New creates an empty index.
func New() *Index {
	return &Index{root: make(map[string]*node)}
}

// Len returns the number of tracks held, homonyms included.
func (idx *Index) Len() int {
	return idx.tracks
}

// Nodes returns the number of trie nodes.
func (idx *Index) Nodes() int {
	return idx.nodes
}

// ImportAll inserts every track in order.
func (idx *Index) ImportAll(tracks []track.Track) {
	for _, t := range tracks {
		idx.Insert(t)
	}
}

// Insert adds t under the path spelled by its title words. Re-inserting a
// title that is already known adds another track to the same node.
// Titles without words are ignored.
func (idx *Index) Insert(t track.Track) {
	words := t.Words()
	if len(words) == 0 {
		return
	}

	first, ok := idx.root[words[0]]
	if !ok {
		first = newNode(words[0], 1)
		idx.root[words[0]] = first
		idx.nodes++
		idx.insertChain(first, words[1:], t)
		return
	}

	// Split away from the existing structure at the first missing child.
	n := lookupNode(first, words[1:])
	idx.insertChain(n, words[n.depth:], t)
}

// lookupNode follows the children of start along words as far as they match
// and returns the deepest node reached.
func lookupNode(start *node, words []string) *node {
	n := start
	for _, w := range words {
		child, ok := n.children[w]
		if !ok {
			break
		}
		n = child
	}
	return n
}

// insertChain hangs a fresh chain of nodes for words under start and attaches
// t to the last one (or to start itself when words is empty).
func (idx *Index) insertChain(start *node, words []string, t track.Track) {
	n := start
	for _, w := range words {
		child := newNode(w, n.depth+1)
		n.children[w] = child
		idx.nodes++
		n = child
	}
	n.addTrack(t)
	idx.tracks++
}
