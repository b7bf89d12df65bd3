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
	"crypto/sha1"
	"errors"
	"math"
	"sync"

	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"
)

// ErrNoIndex is returned when no index is found to serve a query.
var ErrNoIndex = errors.New("no index found")

// PrimaryKeyFunc derives a document's primary key. The default hashes
// the raw document bytes with SHA-1; a collection may be given its own
// at construction if the surrounding system already has document
// identifiers.
type PrimaryKeyFunc func(doc Document) PrimaryKey

func defaultPrimaryKey(doc Document) PrimaryKey {
	sum := sha1.Sum(doc)
	pk := make(PrimaryKey, len(sum))
	copy(pk, sum[:])
	return pk
}

// Collection is a named set of documents plus the secondary indexes
// declared over it. Every index lives in its own bbolt sub-bucket of the
// collection's bucket, alongside a "_documents" sub-bucket holding the
// raw documents keyed by primary key.
type Collection struct {
	name    string
	db      *bbolt.DB
	indexes []*Index
	refFunc PrimaryKeyFunc
	logger  *logrus.Logger

	// mu serializes Insert: the unique-check/put pair is not atomic at
	// the KV layer, so concurrent inserts are closed off here instead of
	// relying on a compare-and-swap primitive the KV contract does not
	// promise.
	mu sync.Mutex
}

// AddIndex adds idx to the collection, backfilling every already-stored
// document into it. A second AddIndex with the same name is a no-op.
func (c *Collection) AddIndex(idx *Index) error {
	for _, existing := range c.indexes {
		if existing.Name == idx.Name {
			return nil
		}
	}

	if err := c.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(c.name))
		if err != nil {
			return err
		}
		if b := bucket.Bucket(idx.BucketName()); b != nil {
			return nil
		}

		idxBucket, err := bucket.CreateBucketIfNotExists(idx.BucketName())
		if err != nil {
			return err
		}
		docBucket, err := bucket.CreateBucketIfNotExists([]byte(documentsBucket))
		if err != nil {
			return err
		}

		cur := docBucket.Cursor()
		for pk, raw := cur.First(); pk != nil; pk, raw = cur.Next() {
			status, err := idx.Insert(idxBucket, Document(raw), PrimaryKey(pk))
			if err != nil {
				return err
			}
			if status != NoError {
				c.logger.WithField("index", idx.Name).WithField("status", status.String()).Warn("backfill skipped a document")
			}
		}
		return nil
	}); err != nil {
		return err
	}

	c.indexes = append(c.indexes, idx)
	return nil
}

// DropIndex removes the named index and its bucket.
func (c *Collection) DropIndex(name string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(c.name))
		if err != nil {
			return err
		}

		kept := make([]*Index, 0, len(c.indexes))
		for _, idx := range c.indexes {
			if idx.Name != name {
				kept = append(kept, idx)
				continue
			}
			if err := bucket.DeleteBucket(idx.BucketName()); err != nil && err != bbolt.ErrBucketNotFound {
				return err
			}
		}
		c.indexes = kept
		return nil
	})
}

// Insert adds doc to the collection and every declared index, rolling
// back any index already written for this document if a later index
// rejects it (e.g. a unique-constraint violation) — insert is
// all-or-nothing across the whole collection, not just within one index.
func (c *Collection) Insert(doc Document) (PrimaryKey, Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pk := c.refFunc(doc)
	status := NoError

	err := c.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(c.name))
		if err != nil {
			return err
		}

		written := make([]*Index, 0, len(c.indexes))
		for _, idx := range c.indexes {
			idxBucket, err := bucket.CreateBucketIfNotExists(idx.BucketName())
			if err != nil {
				return err
			}

			var idxErr error
			status, idxErr = idx.Insert(idxBucket, doc, pk)
			if idxErr != nil {
				return idxErr
			}
			if status != NoError {
				for _, w := range written {
					wBucket := bucket.Bucket(w.BucketName())
					if _, err := w.Remove(wBucket, doc, pk); err != nil {
						c.logger.WithField("index", w.Name).WithError(err).Warn("rollback delete failed")
					}
				}
				return nil
			}
			written = append(written, idx)
		}

		docBucket, err := bucket.CreateBucketIfNotExists([]byte(documentsBucket))
		if err != nil {
			return err
		}
		return docBucket.Put(pk, doc)
	})
	if err != nil {
		return nil, Internal, err
	}
	return pk, status, nil
}

// Remove deletes doc from the collection and from every declared index.
// Every index is attempted regardless of earlier failures; only the
// first error is reported.
func (c *Collection) Remove(doc Document) (Status, error) {
	pk := c.refFunc(doc)
	var firstErr error

	err := c.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(c.name))
		if bucket == nil {
			return nil
		}

		for _, idx := range c.indexes {
			idxBucket := bucket.Bucket(idx.BucketName())
			if idxBucket == nil {
				continue
			}
			if _, err := idx.Remove(idxBucket, doc, pk); err != nil && firstErr == nil {
				firstErr = err
			}
		}

		docBucket := bucket.Bucket([]byte(documentsBucket))
		if docBucket != nil {
			if err := docBucket.Delete(pk); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return nil
	})
	if err != nil {
		return Internal, err
	}
	if firstErr != nil {
		return Internal, firstErr
	}
	return NoError, nil
}

// Find runs Iterate and collects every matching document.
func (c *Collection) Find(p *Predicate, ref string, reverse bool) ([]Document, error) {
	var docs []Document
	err := c.Iterate(p, ref, reverse, func(doc Document) error {
		docs = append(docs, doc)
		return nil
	})
	return docs, err
}

// Iterate picks the cheapest index that supports p, specializes p
// against it, builds an iterator and calls fn for every resolved
// document in scan order. Returns ErrNoIndex if no declared index can
// serve p.
func (c *Collection) Iterate(p *Predicate, ref string, reverse bool, fn func(Document) error) error {
	return c.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(c.name))
		if bucket == nil {
			return ErrNoIndex
		}

		idx, idxBucket := c.bestFilterIndex(bucket, p, ref)
		if idx == nil {
			return ErrNoIndex
		}

		docBucket := bucket.Bucket([]byte(documentsBucket))
		canonical := idx.Specialize(p, ref)
		it, err := idx.IteratorFor(idxBucket, canonical, ref, reverse, c.lookupFunc(docBucket))
		if err != nil {
			return err
		}
		return drain(it, fn)
	})
}

// IterateSorted picks the cheapest index whose key order serves sc and
// iterates its full keyspace in that order, without any filter predicate.
func (c *Collection) IterateSorted(sc *SortCondition, reverse bool, fn func(Document) error) error {
	return c.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(c.name))
		if bucket == nil {
			return ErrNoIndex
		}

		var best *Index
		var bestBucket *bbolt.Bucket
		bestCost := math.Inf(1)
		for _, idx := range c.indexes {
			b := bucket.Bucket(idx.BucketName())
			if b == nil {
				continue
			}
			supported, cost, _ := idx.SupportsSort(sc, b.Stats().KeyN)
			if supported && cost < bestCost {
				best, bestBucket, bestCost = idx, b, cost
			}
		}
		if best == nil {
			return ErrNoIndex
		}

		docBucket := bucket.Bucket([]byte(documentsBucket))
		it, err := best.IteratorFor(bestBucket, &Predicate{}, sc.Var, reverse, c.lookupFunc(docBucket))
		if err != nil {
			return err
		}
		return drain(it, fn)
	})
}

func (c *Collection) bestFilterIndex(bucket *bbolt.Bucket, p *Predicate, ref string) (*Index, *bbolt.Bucket) {
	var best *Index
	var bestBucket *bbolt.Bucket
	bestCost := math.Inf(1)

	for _, idx := range c.indexes {
		b := bucket.Bucket(idx.BucketName())
		if b == nil {
			continue
		}
		supported, _, cost := idx.SupportsFilter(p, ref, b.Stats().KeyN)
		if supported && cost < bestCost {
			best, bestBucket, bestCost = idx, b, cost
		}
	}
	return best, bestBucket
}

func (c *Collection) lookupFunc(docBucket *bbolt.Bucket) PrimaryLookup {
	return func(pk PrimaryKey) (Document, bool, error) {
		if docBucket == nil {
			return nil, false, nil
		}
		raw := docBucket.Get(pk)
		if raw == nil {
			return nil, false, nil
		}
		cp := make([]byte, len(raw))
		copy(cp, raw)
		return Document(cp), true, nil
	}
}

func drain(it hitIterator, fn func(Document) error) error {
	for {
		hit, err := it.Next()
		if err != nil {
			return err
		}
		if hit == nil {
			return nil
		}
		if err := fn(hit.Document); err != nil {
			return err
		}
	}
}
