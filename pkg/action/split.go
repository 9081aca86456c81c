package action

import (
	"github.com/smrender/smrender/pkg/osm"
	"github.com/smrender/smrender/pkg/rule"
	"github.com/smrender/smrender/pkg/trie"
)

// Split cuts every way that passes through a matched interior node N
// into two ways at N: the existing way keeps refs[0..i], and a new way
// gets refs[i..end] with N duplicated as the shared endpoint. A way is
// left untouched if N is its first or last ref; splitting at an
// endpoint is a no-op.
type Split struct {
	rule.BaseAction
	Store *trie.Store
}

func (Split) Name() string { return "split" }

func (s Split) Ini(rt *rule.Rule) (rule.Result, error) {
	s.Store.RequestIndex()
	return rule.OK, nil
}

func (s Split) Main(rt *rule.Rule, o osm.Object) (rule.Result, error) {
	n, ok := o.(*osm.Node)
	if !ok {
		return rule.OK, nil
	}

	// Copy the parent list: splitting mutates the reverse index for the
	// ways being split, so iterate over a snapshot.
	parents := append([]osm.Object(nil), s.Store.ReverseParents(n.ID)...)
	for _, p := range parents {
		w, ok := p.(*osm.Way)
		if !ok {
			continue
		}
		s.splitWay(w, n.ID)
	}
	return rule.OK, nil
}

func (s Split) splitWay(w *osm.Way, nodeID int64) {
	idx := -1
	for i, ref := range w.Refs {
		if ref == nodeID {
			idx = i
			break
		}
	}
	if idx <= 0 || idx == len(w.Refs)-1 {
		return
	}

	tail := make([]int64, len(w.Refs)-idx)
	copy(tail, w.Refs[idx:])

	newWay := &osm.Way{
		Common: osm.Common{
			ID:      s.Store.IDs.NewWayID(),
			Visible: true,
			Tags:    w.Tags.Clone(),
		},
		Refs: tail,
	}
	s.Store.PutWay(newWay)

	head := make([]int64, idx+1)
	copy(head, w.Refs[:idx+1])
	w.Refs = head

	// Reassign reverse pointers for every node now owned solely by the
	// new tail: nodes that still also appear in the (shortened) head
	// keep their pointer to w in addition to gaining one to newWay.
	headSet := make(map[int64]bool, len(head))
	for _, ref := range head {
		headSet[ref] = true
	}
	for _, ref := range tail {
		if !headSet[ref] {
			s.Store.RemoveRevPtr(ref, w)
		}
		s.Store.AddRevPtr(ref, newWay)
	}
}
