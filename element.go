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

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// ErrInvalidDocument is returned when a document is not valid JSON.
var ErrInvalidDocument = errors.New("document is not valid JSON")

// buildElements resolves every field of the descriptor against doc and
// returns the ordered tuples that Insert/Remove turn into entry keys.
// A nil, nil result (no error, no
// tuples) means "this document produces no entries", per the sparse
// policy and the zero-length-expansion rule.
func buildElements(doc Document, d *Descriptor) ([][]Scalar, error) {
	perField := make([][]Scalar, len(d.Fields))
	for i, f := range d.Fields {
		vals, err := resolveField(doc, f)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "building index element for field %d (%s)", i, f.gjsonPath())
		}
		perField[i] = vals
	}

	if d.Sparse {
		for _, vals := range perField {
			if len(vals) == 1 && vals[0].IsUndefined() {
				return nil, nil
			}
		}
	}

	// An expanded field resolving to zero array elements drops the whole
	// document: an empty array yields nothing to index.
	for _, vals := range perField {
		if len(vals) == 0 {
			return nil, nil
		}
	}

	tuples := [][]Scalar{{}}
	for _, vals := range perField {
		next := make([][]Scalar, 0, len(tuples)*len(vals))
		for _, t := range tuples {
			for _, v := range vals {
				nt := make([]Scalar, len(t)+1)
				copy(nt, t)
				nt[len(t)] = v
				next = append(next, nt)
			}
		}
		tuples = next
	}
	return tuples, nil
}

// resolveField extracts the value(s) at one field's attribute path from
// doc. A non-expanded field always resolves to exactly one Scalar (array
// and object values are encoded whole, as composite scalars, not
// flattened). An expanded field resolves to one Scalar per array element,
// or to zero Scalars if the value at the path is not an array. Either kind
// of field resolves to the single Undefined sentinel if the path is
// absent, letting the sparse
// check above distinguish "attribute missing" from "attribute present but
// an empty array".
func resolveField(doc Document, f Field) ([]Scalar, error) {
	if !gjson.ValidBytes(doc) {
		return nil, ErrInvalidDocument
	}

	result := gjson.GetBytes(doc, f.gjsonPath())
	if !result.Exists() {
		return []Scalar{Undefined}, nil
	}

	if f.useExpansion() {
		if !result.IsArray() {
			return []Scalar{}, nil
		}
		arr := result.Array()
		out := make([]Scalar, 0, len(arr))
		for _, sub := range arr {
			s, err := scalarFromResult(sub)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	}

	s, err := scalarFromResult(result)
	if err != nil {
		return nil, err
	}
	return []Scalar{s}, nil
}

// scalarFromResult maps a gjson.Result onto the Scalar type hierarchy
// that carries the data model's type-aware order, recursing into arrays
// and objects so even a whole sub-document can be used as an index value.
func scalarFromResult(result gjson.Result) (Scalar, error) {
	switch result.Type {
	case gjson.String:
		return String(result.Str), nil
	case gjson.Number:
		return Number(result.Num), nil
	case gjson.True:
		return Bool(true), nil
	case gjson.False:
		return Bool(false), nil
	case gjson.Null:
		return Null, nil
	}

	if result.IsArray() {
		arr := result.Array()
		elems := make([]Scalar, len(arr))
		for i, e := range arr {
			s, err := scalarFromResult(e)
			if err != nil {
				return Scalar{}, err
			}
			elems[i] = s
		}
		return Array(elems...), nil
	}

	if result.IsObject() {
		fields := make(map[string]Scalar)
		var walkErr error
		result.ForEach(func(key, value gjson.Result) bool {
			s, err := scalarFromResult(value)
			if err != nil {
				walkErr = err
				return false
			}
			fields[key.String()] = s
			return true
		})
		if walkErr != nil {
			return Scalar{}, walkErr
		}
		return Object(fields), nil
	}

	return Scalar{}, fmt.Errorf("unsupported value at path: %s", result.Raw)
}
