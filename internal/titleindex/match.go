package titleindex

import "github.com/llehouerou/sentence2songs/internal/track"

// Match is the result of walking the trie along the head of a sentence.
type Match struct {
	// Words is the number of leading words the walk consumed.
	Words int
	// End is a track of the node where the walk stopped, nil when that node
	// is only a path segment.
	End *track.Track

	// CheckpointWords and Checkpoint describe the deepest node on the walk
	// that carried a track. They are zero and nil when there was none.
	CheckpointWords int
	Checkpoint      *track.Track
}

// Found reports whether the walk passed any complete title.
func (m Match) Found() bool {
	return m.End != nil || m.Checkpoint != nil
}

// LongestPrefix walks the trie along words for as long as children match.
// It returns false when words is empty or its first word starts no title.
func (idx *Index) LongestPrefix(words []string) (Match, bool) {
	if len(words) == 0 {
		return Match{}, false
	}
	n, ok := idx.root[words[0]]
	if !ok {
		return Match{}, false
	}

	m := Match{Words: 1}
	if t := n.pick(); t != nil {
		m.CheckpointWords, m.Checkpoint = 1, t
	}

	for m.Words < len(words) {
		child, ok := n.children[words[m.Words]]
		if !ok {
			break
		}
		n = child
		m.Words++
		if t := n.pick(); t != nil {
			m.CheckpointWords, m.Checkpoint = m.Words, t
		}
	}

	// The deepest tracked node is the stopping node itself when it has tracks.
	if m.CheckpointWords == m.Words {
		m.End = m.Checkpoint
	}
	return m, true
}
