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

// Insert composes the element tuples for doc, writes one entry per
// tuple, and enforces uniqueness when the descriptor asks for it.
//
// Inserts are all-or-nothing per document: rollback on a mid-insert
// failure removes this document from exactly the entries already written
// for it, never from the entry that just failed.
func Insert(store KVStore, d *Descriptor, doc Document, pk PrimaryKey) (Status, error) {
	tuples, err := buildElements(doc, d)
	if err != nil {
		return Internal, err
	}

	written := make([]Key, 0, len(tuples))
	for _, t := range tuples {
		key := EncodeKey(d.ID, t)

		if d.Unique {
			raw, found, err := store.Get(key)
			if err != nil {
				rollbackKeys(store, written, pk)
				return Internal, err
			}
			if found {
				set, err := unmarshalEntrySet(raw)
				if err == nil && set.len() > 0 {
					rollbackKeys(store, written, pk)
					return UniqueConstraintViolated, nil
				}
			}
		}

		if err := putEntry(store, key, pk); err != nil {
			rollbackKeys(store, written, pk)
			return Internal, err
		}
		written = append(written, key)
	}

	return NoError, nil
}

// Remove deletes every entry produced for doc. It is best-effort
// thorough: every tuple's entry is deleted regardless of earlier
// failures, and only the first error is reported.
func Remove(store KVStore, d *Descriptor, doc Document, pk PrimaryKey) (Status, error) {
	tuples, err := buildElements(doc, d)
	if err != nil {
		return Internal, err
	}

	var firstErr error
	for _, t := range tuples {
		key := EncodeKey(d.ID, t)
		if err := removeEntry(store, key, pk); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return Internal, firstErr
	}
	return NoError, nil
}

func putEntry(store KVStore, key []byte, pk PrimaryKey) error {
	set, err := loadEntrySet(store, key)
	if err != nil {
		return err
	}
	if err := set.add(pk); err != nil {
		return err
	}
	return store.Put(key, set.marshal())
}

func removeEntry(store KVStore, key []byte, pk PrimaryKey) error {
	raw, found, err := store.Get(key)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	set, err := unmarshalEntrySet(raw)
	if err != nil {
		return err
	}
	set.remove(pk)
	if set.len() == 0 {
		return store.Delete(key)
	}
	return store.Put(key, set.marshal())
}

func loadEntrySet(store KVStore, key []byte) (*entrySet, error) {
	raw, found, err := store.Get(key)
	if err != nil {
		return nil, err
	}
	if !found {
		return newEntrySet(), nil
	}
	return unmarshalEntrySet(raw)
}

// rollbackKeys removes pk from every entry already written for this
// document, best-effort, mirroring remove's "report but keep going"
// stance — a rollback failure must not mask the original write error.
// Other documents sharing one of those keys keep their entries.
func rollbackKeys(store KVStore, keys []Key, pk PrimaryKey) {
	for _, k := range keys {
		_ = removeEntry(store, k, pk)
	}
}
