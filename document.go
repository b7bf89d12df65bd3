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

// Document is a JSON document in raw []byte form. The index components
// only read a Document to extract typed attribute values (element.go) or
// to hand it back out of an iterator unchanged; Collection also keeps
// each raw Document in its "_documents" bucket, keyed by a primary key
// derived from the document.
type Document []byte

// DocumentFromString creates a Document from a JSON string.
func DocumentFromString(json string) Document {
	return Document(json)
}

// String returns the document in string form.
func (d Document) String() string {
	return string(d)
}
