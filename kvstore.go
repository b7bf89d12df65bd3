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

import "go.etcd.io/bbolt"

// KVStore abstracts the ordered KV engine down to the only capabilities
// the index requires. Everything above this interface is engine-agnostic;
// bboltKV is the one concrete implementation, scoped to a single bbolt
// bucket for the lifetime of one transaction.
type KVStore interface {
	Get(key []byte) ([]byte, bool, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	NewIterator() Cursor
}

// Cursor is the ordered KV engine's sorted-iteration contract.
type Cursor interface {
	Seek(key []byte)
	Next()
	Prev()
	Valid() bool
	Key() []byte
	Value() []byte
}

// bboltKV adapts a *bbolt.Bucket to KVStore.
type bboltKV struct {
	bucket *bbolt.Bucket
}

// NewBboltKVStore builds a KVStore backed by a live bbolt bucket. The
// bucket, and any Cursor built from it, is only valid for the lifetime of
// the enclosing bbolt transaction.
func NewBboltKVStore(bucket *bbolt.Bucket) KVStore {
	return &bboltKV{bucket: bucket}
}

func (s *bboltKV) Get(key []byte) ([]byte, bool, error) {
	v := s.bucket.Get(key)
	if v == nil {
		return nil, false, nil
	}
	// bbolt reuses its internal buffer across the transaction; copy out
	// so callers can retain the value past the next cursor step.
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (s *bboltKV) Put(key, value []byte) error {
	return s.bucket.Put(key, value)
}

func (s *bboltKV) Delete(key []byte) error {
	return s.bucket.Delete(key)
}

func (s *bboltKV) NewIterator() Cursor {
	return &bboltCursor{cursor: s.bucket.Cursor()}
}

// bboltCursor adapts *bbolt.Cursor to Cursor, adding the explicit
// Valid() bool on top of bbolt's nil-key end-of-range convention.
type bboltCursor struct {
	cursor     *bbolt.Cursor
	key, value []byte
	valid      bool
}

func (c *bboltCursor) Seek(key []byte) {
	c.key, c.value = c.cursor.Seek(key)
	c.valid = c.key != nil
}

func (c *bboltCursor) Next() {
	c.key, c.value = c.cursor.Next()
	c.valid = c.key != nil
}

func (c *bboltCursor) Prev() {
	c.key, c.value = c.cursor.Prev()
	c.valid = c.key != nil
}

func (c *bboltCursor) Valid() bool {
	return c.valid
}

func (c *bboltCursor) Key() []byte {
	return c.key
}

func (c *bboltCursor) Value() []byte {
	return c.value
}
