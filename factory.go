/*
 * go-leia
 * Copyright (C) 2021 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package secidx

// hitIterator is the common shape of Iterator and MultiIndexIterator, so
// the factory can hand either back to a caller that only ever calls Next.
type hitIterator interface {
	Next() (*Hit, error)
}

// equalitySlot is one field's contribution to the equality prefix: either
// a single concrete value (==, or an IN already degraded to one value on
// an expanded field) or a raw candidate list (IN on a non-expanded field,
// still needing cross-product expansion).
type equalitySlot struct {
	eq   *Scalar
	list []Scalar
}

// BuildIterator materializes the scan for an already-specialized
// predicate. The factory trusts the canonical shape and does not
// re-validate it against the planner; gating on SupportsFilter is the
// caller's job.
func BuildIterator(store KVStore, lookup PrimaryLookup, p *Predicate, ref string, d *Descriptor, reverse bool) (hitIterator, error) {
	matches, _ := matchConditions(p, ref, d)

	var slots []equalitySlot
	var rangeMatches []opMatch
	rangeFound := false

	for _, ms := range matches {
		if len(ms) == 0 {
			break
		}

		slot, isEquality := equalitySlotFor(ms)
		if isEquality {
			slots = append(slots, slot)
			continue
		}

		rangeMatches = ms
		rangeFound = true
		break
	}

	var ro *rangeOp
	if rangeFound {
		ro = buildRangeOp(rangeMatches)
	}

	combos := expandCombos(slots)

	if len(combos) == 1 {
		lower, upper := endpoints(d.ID, combos[0], ro)
		return NewIterator(store, lower, upper, reverse, lookup), nil
	}

	children := make([]*Iterator, len(combos))
	for i, combo := range combos {
		lower, upper := endpoints(d.ID, combo, ro)
		children[i] = NewIterator(store, lower, upper, reverse, lookup)
	}
	return NewMultiIndexIterator(children, reverse), nil
}

// equalitySlotFor reports whether ms (one field's accepted comparisons)
// is an equality-prefix field, and if so the values it contributes.
func equalitySlotFor(ms []opMatch) (equalitySlot, bool) {
	for _, m := range ms {
		switch m.Operator {
		case OpEQ:
			v := m.Value
			return equalitySlot{eq: &v}, true
		case OpIN:
			return equalitySlot{list: m.List}, true
		}
	}
	return equalitySlot{}, false
}

// buildRangeOp maps the matcher's (operator, side) pairs onto the
// index-side bound kind, flipping the operator when the attribute access
// was on the right of the comparison (`x < doc.f` ≡ `doc.f > x`).
func buildRangeOp(ms []opMatch) *rangeOp {
	ro := &rangeOp{}
	for _, m := range ms {
		v := m.Value
		switch rangeKind(m.Operator, m.Side) {
		case "GE":
			ro.ge = &v
		case "GT":
			ro.gt = &v
		case "LE":
			ro.le = &v
		case "LT":
			ro.lt = &v
		}
	}
	return ro
}

func rangeKind(op Operator, side Side) string {
	kind := ""
	switch op {
	case OpLT:
		kind = "LT"
	case OpLE:
		kind = "LE"
	case OpGT:
		kind = "GT"
	case OpGE:
		kind = "GE"
	}
	if side != SideRight {
		return kind
	}
	switch kind {
	case "LT":
		return "GT"
	case "LE":
		return "GE"
	case "GT":
		return "LT"
	case "GE":
		return "LE"
	}
	return kind
}

// expandCombos builds the cross product of every IN slot's candidates
// against every plain-equality slot's single value, so each combination
// becomes one concrete equality-prefix scan.
func expandCombos(slots []equalitySlot) [][]Scalar {
	combos := [][]Scalar{{}}
	for _, s := range slots {
		choices := s.list
		if s.eq != nil {
			choices = []Scalar{*s.eq}
		}

		next := make([][]Scalar, 0, len(combos)*len(choices))
		for _, c := range combos {
			for _, v := range choices {
				nc := make([]Scalar, len(c)+1)
				copy(nc, c)
				nc[len(c)] = v
				next = append(next, nc)
			}
		}
		combos = next
	}
	return combos
}
