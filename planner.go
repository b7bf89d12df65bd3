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

import "math"

// SupportsFilter walks matches in field order and decides whether this
// index can serve a predicate at all, and if so at what estimated cost.
// matches and values are matchConditions' output.
func SupportsFilter(matches [][]opMatch, values, itemsInIndex int, unique, sparse bool) (supported bool, estimatedItems int, estimatedCost float64) {
	cost := float64(itemsInIndex)
	factor := 20.0
	attributesCoveredByEquality := 0
	attributesCovered := 0
	prevWasRange := false

	for _, ms := range matches {
		if len(ms) == 0 {
			break
		}
		if prevWasRange {
			break
		}

		if fieldHasEquality(ms) {
			cost /= factor
			factor = math.Max(factor*0.25, 2.0)
			attributesCoveredByEquality++
			prevWasRange = false
		} else {
			if len(ms) >= 2 {
				cost /= 7.5
			} else {
				cost /= 2
			}
			prevWasRange = true
		}
		attributesCovered++
	}

	if values < 1 {
		values = 1
	}

	switch {
	case attributesCoveredByEquality == len(matches) && unique:
		items := minInt(values, itemsInIndex)
		if items < 1 {
			items = 1
		}
		if cost <= float64(items) {
			cost = cost * 0.995
		} else {
			cost = float64(items)
		}
		return true, items, cost

	case attributesCovered > 0 && (!sparse || attributesCovered == len(matches)):
		items := int(math.Max(cost*float64(values), 1))
		cost *= float64(values)
		return true, items, cost

	default:
		return false, itemsInIndex, float64(itemsInIndex)
	}
}

func fieldHasEquality(ms []opMatch) bool {
	for _, m := range ms {
		if m.Operator == OpEQ || m.Operator == OpIN {
			return true
		}
	}
	return false
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// SupportsSort reports whether key order can serve a sort condition. A
// sort is servable only against a prefix of the descriptor's fields,
// in a single direction, and never against a sparse or expanded index
// (both can omit entries that a pure key-order scan would otherwise
// return, breaking completeness).
func SupportsSort(sc *SortCondition, ref string, d *Descriptor, itemsInIndex int) (supported bool, estimatedCost float64, coveredAttrs int) {
	if sc.Var != ref || len(sc.Fields) == 0 {
		return false, float64(itemsInIndex), 0
	}
	if d.Sparse || d.UseExpansion() {
		return false, float64(itemsInIndex), 0
	}
	if len(sc.Fields) > d.Depth() {
		return false, float64(itemsInIndex), 0
	}

	descending := sc.Fields[0].Descending
	for _, f := range sc.Fields {
		if f.Descending != descending {
			return false, float64(itemsInIndex), 0
		}
	}

	for i, f := range sc.Fields {
		if !f.Field.Equals(d.Fields[i]) {
			return false, float64(itemsInIndex), 0
		}
	}

	coveredAttrs = len(sc.Fields)
	if coveredAttrs == d.Depth() {
		return true, 0, coveredAttrs
	}

	n := float64(itemsInIndex)
	if n < 2 {
		n = 2
	}
	return true, (n / float64(coveredAttrs)) * math.Log2(n), coveredAttrs
}
