// # internal/model/mro.go
package model

import (
	"fmt"
)

// linearizeMRO computes the C3 linearization of a class: the class itself,
// then its ancestors ordered so that a class always precedes its own bases
// and, between two bases, the one listed first in the subclass wins.
// Bases outside the project are absent from Bases and skipped.
func linearizeMRO(c *Entity) ([]*Entity, error) {
	return linearize(c, make(map[*Entity]bool))
}

func linearize(c *Entity, visiting map[*Entity]bool) ([]*Entity, error) {
	if visiting[c] {
		return nil, fmt.Errorf("inheritance cycle through %s", c.Name)
	}
	visiting[c] = true
	defer delete(visiting, c)

	var seqs [][]*Entity
	for _, base := range c.Bases {
		if base == nil {
			continue
		}
		baseMRO, err := linearize(base, visiting)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, baseMRO)
	}
	if len(c.Bases) > 0 {
		tail := make([]*Entity, 0, len(c.Bases))
		for _, base := range c.Bases {
			if base != nil {
				tail = append(tail, base)
			}
		}
		if len(tail) > 0 {
			seqs = append(seqs, tail)
		}
	}

	merged, err := c3Merge(seqs)
	if err != nil {
		return nil, fmt.Errorf("inconsistent hierarchy for %s: %w", c.Name, err)
	}
	return append([]*Entity{c}, merged...), nil
}

// c3Merge repeatedly takes the first head that appears in no sequence tail
// (the monotonic merge of the C3 algorithm).
func c3Merge(seqs [][]*Entity) ([]*Entity, error) {
	var out []*Entity

	work := make([][]*Entity, 0, len(seqs))
	for _, s := range seqs {
		if len(s) > 0 {
			work = append(work, append([]*Entity(nil), s...))
		}
	}

	for len(work) > 0 {
		var candidate *Entity
		for _, s := range work {
			head := s[0]
			if inAnyTail(head, work) {
				continue
			}
			candidate = head
			break
		}
		if candidate == nil {
			return nil, fmt.Errorf("no valid head during merge")
		}

		out = append(out, candidate)

		next := work[:0]
		for _, s := range work {
			if s[0] == candidate {
				s = s[1:]
			}
			if len(s) > 0 {
				next = append(next, s)
			}
		}
		work = next
	}

	return out, nil
}

func inAnyTail(e *Entity, seqs [][]*Entity) bool {
	for _, s := range seqs {
		for _, x := range s[1:] {
			if x == e {
				return true
			}
		}
	}
	return false
}

// fallbackMRO is the left-to-right depth-first dedup order used when C3
// fails on an inconsistent hierarchy.
func fallbackMRO(c *Entity) []*Entity {
	seen := make(map[*Entity]bool)
	var out []*Entity

	var walk func(e *Entity)
	walk = func(e *Entity) {
		if e == nil || seen[e] {
			return
		}
		seen[e] = true
		out = append(out, e)
		for _, base := range e.Bases {
			walk(base)
		}
	}
	walk(c)
	return out
}
