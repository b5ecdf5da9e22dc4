// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package typedkv is a typed, multi-column-family key-value store on top of
// an embedded LSM engine.
//
// A column family is a named, independently ordered partition of one physical
// store. Each data set is described by a Schema binding a family name to a key
// codec and a value codec; every operation takes the schema and works in
// terms of typed keys and values:
//
//	var Widgets = typedkv.NewSchema("widgets", codec.Uint64, codec.String)
//
//	db, err := typedkv.Open(path, []typedkv.ColumnFamilyDescriptor{{Name: "widgets"}})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := typedkv.Put(db, Widgets, 42, "answer"); err != nil {
//	    return err
//	}
//	v, ok, err := typedkv.Get(db, Widgets, 42)
//
// Entries within a family are ordered by the bytes of their encoded keys, so
// key codecs must preserve the intended logical order. The fixed-width codecs
// in package codec do.
//
// # Errors
//
// A missing key is not an error. Failures wrap one of ErrColumnFamilyNotFound,
// ErrEncode, ErrDecode, ErrEngine or ErrClosed, so callers can tell a
// misconfiguration from corrupt data from an infrastructure failure with
// errors.Is. A failed operation never invalidates the DB.
//
// # Iteration
//
// Iterators are lazy, walk one family in one direction and stop at the first
// error. They are not restartable and must be closed, either directly or by
// ranging over All.
package typedkv
