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
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"
)

// Store holds a reference to the bbolt data file and every collection
// opened against it.
type Store struct {
	db          *bbolt.DB
	collections map[string]*Collection
	logger      *logrus.Logger
	// options is used during configuration, before the db is opened.
	options bbolt.Options
}

// StoreOption configures a Store at construction time.
type StoreOption func(*Store)

// WithoutSync signals the underlying bbolt db to skip syncing with disk,
// ideal for testing and bulk loading.
func WithoutSync() StoreOption {
	return func(s *Store) {
		s.options.NoSync = true
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *logrus.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a new store backed by a bbolt file at dbFile.
func NewStore(dbFile string, options ...StoreOption) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbFile), os.ModePerm); err != nil {
		return nil, err
	}

	st := &Store{
		options:     *bbolt.DefaultOptions,
		collections: map[string]*Collection{},
		logger:      defaultLogger(),
	}

	for _, option := range options {
		option(st)
	}

	db, err := bbolt.Open(dbFile, boltDBFileMode, &st.options)
	if err != nil {
		return nil, err
	}
	st.db = db

	return st, nil
}

// Collection returns the named Collection, creating it on first use.
func (s *Store) Collection(name string) *Collection {
	c, ok := s.collections[name]
	if !ok {
		c = &Collection{
			name:    name,
			db:      s.db,
			refFunc: defaultPrimaryKey,
			logger:  s.logger,
		}
		s.collections[name] = c
	}
	return c
}

// Close closes the underlying bbolt db.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
