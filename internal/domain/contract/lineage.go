package contract

import (
	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// Lineage is a rebuilt in-memory index over a set of contracts that answers
// amendment/version ancestry queries.  It is an arena plus a child index:
// traversals carry an explicit visited set so malformed parent links (cycles,
// dangling IDs) degrade to "no relation" instead of looping or panicking.
type Lineage struct {
	byID     map[types.ID]*Contract
	children map[types.ID][]types.ID
}

// NewLineage indexes the given contracts.  Nil entries are skipped.
func NewLineage(contracts []*Contract) *Lineage {
	l := &Lineage{
		byID:     make(map[types.ID]*Contract, len(contracts)),
		children: make(map[types.ID][]types.ID),
	}
	for _, c := range contracts {
		if c == nil {
			continue
		}
		l.byID[c.ID] = c
	}
	// Child edges only for parents that actually exist in the arena.
	for _, c := range l.byID {
		if c.ParentContractID == nil {
			continue
		}
		pid := *c.ParentContractID
		if _, ok := l.byID[pid]; ok {
			l.children[pid] = append(l.children[pid], c.ID)
		}
	}
	return l
}

// Get returns the contract with the given ID, if indexed.
func (l *Lineage) Get(id types.ID) (*Contract, bool) {
	c, ok := l.byID[id]
	return c, ok
}

// Parent returns the direct parent of the given contract, or false when the
// contract is unknown, has no parent link, or the link dangles.
func (l *Lineage) Parent(id types.ID) (*Contract, bool) {
	c, ok := l.byID[id]
	if !ok || c.ParentContractID == nil {
		return nil, false
	}
	p, ok := l.byID[*c.ParentContractID]
	return p, ok
}

// Children returns the direct amendments/versions pointing at the given
// contract.  The result order is unspecified.
func (l *Lineage) Children(id types.ID) []*Contract {
	ids := l.children[id]
	out := make([]*Contract, 0, len(ids))
	for _, cid := range ids {
		out = append(out, l.byID[cid])
	}
	return out
}

// Ancestors walks parent links from the given contract upward and returns
// them nearest-first.  A cycle in the parent chain terminates the walk at the
// first repeated node.
func (l *Lineage) Ancestors(id types.ID) []*Contract {
	visited := map[types.ID]struct{}{id: {}}
	var out []*Contract
	cur, ok := l.byID[id]
	for ok && cur.ParentContractID != nil {
		pid := *cur.ParentContractID
		if _, seen := visited[pid]; seen {
			break
		}
		visited[pid] = struct{}{}
		cur, ok = l.byID[pid]
		if !ok {
			break
		}
		out = append(out, cur)
	}
	return out
}

// Family returns every contract sharing the given contract's name family
// token (first whitespace token), excluding the contract itself.  Contracts
// with empty names belong to no family.
func (l *Lineage) Family(id types.ID) []*Contract {
	c, ok := l.byID[id]
	if !ok {
		return nil
	}
	token := c.FamilyToken()
	if token == "" {
		return nil
	}
	var out []*Contract
	for _, other := range l.byID {
		if other.ID == id {
			continue
		}
		if other.FamilyToken() == token {
			out = append(out, other)
		}
	}
	return out
}
