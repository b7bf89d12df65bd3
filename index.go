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
	"hash/fnv"

	"go.etcd.io/bbolt"
)

// Index ties a Descriptor to a name and the bbolt sub-bucket it is
// stored under. It is the surface the query engine consumes, realized as
// methods instead of free functions so a Collection can hold a slice of
// them.
type Index struct {
	Name       string
	Descriptor *Descriptor
}

// NewIndex builds an Index over the given fields. The descriptor id is
// derived deterministically from the name (FNV-1a, 64 bit) rather than
// assigned by a counter, so reopening a store never has to persist a
// separate id→name table: the name alone is enough to reconstruct the key
// prefix at any time.
func NewIndex(name string, unique, sparse bool, fields ...Field) (*Index, error) {
	descriptor, err := NewDescriptor(indexID(name), unique, sparse, fields...)
	if err != nil {
		return nil, err
	}
	return &Index{Name: name, Descriptor: descriptor}, nil
}

func indexID(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}

// BucketName is the bbolt sub-bucket this index's entries live in.
func (i *Index) BucketName() []byte {
	return []byte(i.Name)
}

// Insert writes this index's entries for doc into bucket.
func (i *Index) Insert(bucket *bbolt.Bucket, doc Document, pk PrimaryKey) (Status, error) {
	return Insert(NewBboltKVStore(bucket), i.Descriptor, doc, pk)
}

// Remove deletes this index's entries for doc from bucket.
func (i *Index) Remove(bucket *bbolt.Bucket, doc Document, pk PrimaryKey) (Status, error) {
	return Remove(NewBboltKVStore(bucket), i.Descriptor, doc, pk)
}

// SupportsFilter runs the matcher and planner against this index's own
// descriptor.
func (i *Index) SupportsFilter(p *Predicate, ref string, itemsInIndex int) (bool, int, float64) {
	matches, values := matchConditions(p, ref, i.Descriptor)
	return SupportsFilter(matches, values, itemsInIndex, i.Descriptor.Unique, i.Descriptor.Sparse)
}

// SupportsSort reports whether this index's key order can serve sc.
func (i *Index) SupportsSort(sc *SortCondition, itemsInIndex int) (bool, float64, int) {
	return SupportsSort(sc, sc.Var, i.Descriptor, itemsInIndex)
}

// Specialize canonicalizes p against this index's fields.
func (i *Index) Specialize(p *Predicate, ref string) *Predicate {
	return Specialize(p, ref, i.Descriptor)
}

// IteratorFor builds the scan over this index's bucket for an
// already-specialized predicate.
func (i *Index) IteratorFor(bucket *bbolt.Bucket, p *Predicate, ref string, reverse bool, lookup PrimaryLookup) (hitIterator, error) {
	if p == nil {
		p = &Predicate{}
	}
	return BuildIterator(NewBboltKVStore(bucket), lookup, p, ref, i.Descriptor, reverse)
}
