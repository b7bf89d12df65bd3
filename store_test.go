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
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewStore(t *testing.T) {
	t.Run("ok - opens a fresh file", func(t *testing.T) {
		dbFile := filepath.Join(testDirectory(t), "store.db")

		st, err := NewStore(dbFile)

		assert.NoError(t, err)
		assert.NotNil(t, st)
		assert.NoError(t, st.Close())
	})

	t.Run("ok - WithoutSync disables fsync", func(t *testing.T) {
		dbFile := filepath.Join(testDirectory(t), "store.db")

		st, err := NewStore(dbFile, WithoutSync())

		assert.NoError(t, err)
		assert.True(t, st.options.NoSync)
		assert.NoError(t, st.Close())
	})

	t.Run("ok - WithLogger overrides the default logger", func(t *testing.T) {
		dbFile := filepath.Join(testDirectory(t), "store.db")
		logger := logrus.New()

		st, err := NewStore(dbFile, WithLogger(logger))

		assert.NoError(t, err)
		assert.Same(t, logger, st.logger)
		assert.NoError(t, st.Close())
	})
}

func TestStore_Collection(t *testing.T) {
	dbFile := filepath.Join(testDirectory(t), "store.db")
	st, err := NewStore(dbFile)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	t.Run("ok - repeated calls for the same name return the same collection", func(t *testing.T) {
		c1 := st.Collection("docs")
		c2 := st.Collection("docs")

		assert.Same(t, c1, c2)
	})

	t.Run("ok - a full insert-query round-trip through the Store facade", func(t *testing.T) {
		c := st.Collection("people")
		idx, err := NewIndex("by_name", false, false, NewField("name"))
		assert.NoError(t, err)
		assert.NoError(t, c.AddIndex(idx))

		_, status, err := c.Insert(Document(`{"name":"alice"}`))
		assert.NoError(t, err)
		assert.Equal(t, NoError, status)

		docs, err := c.Find(&Predicate{Members: []Comparison{eqCmp("name", String("alice"))}}, testRef, false)
		assert.NoError(t, err)
		assert.Len(t, docs, 1)
	})
}
