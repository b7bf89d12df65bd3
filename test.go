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
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.etcd.io/bbolt"
)

var invalidPathCharRegex = regexp.MustCompile("([^a-zA-Z0-9])")

// testDirectory returns a fresh temporary directory for this test, removed
// automatically on test cleanup.
func testDirectory(t *testing.T) string {
	dir, err := ioutil.TempDir("", normalizeTestName(t))
	if err != nil {
		t.Fatal(err)
		return ""
	}
	t.Cleanup(func() {
		if err := os.RemoveAll(dir); err != nil {
			_, _ = os.Stderr.WriteString(fmt.Sprintf("unable to remove temporary directory for test (%s): %v\n", dir, err))
		}
	})
	return dir
}

func testDB(t *testing.T) *bbolt.DB {
	db, err := bbolt.Open(filepath.Join(testDirectory(t), "test.db"), boltDBFileMode, &bbolt.Options{NoSync: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func testBucket(t *testing.T, tx *bbolt.Tx) *bbolt.Bucket {
	if tx.Writable() {
		bucket, err := tx.CreateBucketIfNotExists([]byte("test"))
		if err != nil {
			t.Fatal(err)
		}
		return bucket
	}
	return tx.Bucket([]byte("test"))
}

func normalizeTestName(t *testing.T) string {
	return invalidPathCharRegex.ReplaceAllString(t.Name(), "_")
}

// assertEntryCount checks that the index's bucket holds exactly n entries
// (flat key/value pairs; the key layout has no nesting per value).
func assertEntryCount(t *testing.T, db *bbolt.DB, idx *Index, n int) bool {
	count := 0
	err := db.View(func(tx *bbolt.Tx) error {
		b := testBucket(t, tx)
		if b == nil {
			return nil
		}
		idxBucket := b.Bucket(idx.BucketName())
		if idxBucket == nil {
			return nil
		}
		cursor := idxBucket.Cursor()
		for k, _ := cursor.Seek([]byte{}); k != nil; k, _ = cursor.Next() {
			count++
		}
		return nil
	})
	if !assert.NoError(t, err) {
		return false
	}
	return assert.Equal(t, n, count)
}
