// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wire

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"sort"

	"github.com/valyala/bytebufferpool"

	"github.com/rabbitgo/amqp091/amqperr"
)

// EncodeTable writes a FieldTable: a u32 byte-length prefix followed by
// (short-name, tagged-value) entries. The announced length is the exact
// byte count of the entries, computed up front via tableByteLength so
// the prefix never needs a second pass.
//
// Entries are written in a deterministic (sorted by name) order for
// reproducible output; AMQP tables are unordered so this is a codec
// implementation choice, not a protocol requirement.
func EncodeTable(w io.Writer, t Table) error {
	n, err := tableByteLength(t)
	if err != nil {
		return err
	}

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(n))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if len(t) == 0 {
		return nil
	}

	names := sortedNames(t)
	scratch := bytebufferpool.Get()
	defer bytebufferpool.Put(scratch)

	for _, name := range names {
		scratch.Reset()
		if err := EncodeShortString(scratch, name); err != nil {
			return err
		}
		if err := EncodeValue(scratch, t[name]); err != nil {
			return err
		}
		if _, err := w.Write(scratch.B); err != nil {
			return err
		}
	}
	return nil
}

// DecodeTable reads a u32-length-prefixed FieldTable, decoding entries
// until exactly that many bytes are consumed. Trailing or missing
// bytes fail with ErrMalformedFrame.
func DecodeTable(r *bytes.Reader) (Table, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if uint64(r.Len()) < uint64(n) {
		return nil, amqperr.Wrap(amqperr.ErrMalformedFrame, "field table body")
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, amqperr.Wrap(amqperr.ErrMalformedFrame, "field table body")
	}
	sub := bytes.NewReader(body)

	t := make(Table)
	for sub.Len() > 0 {
		name, err := DecodeShortString(sub)
		if err != nil {
			return nil, err
		}
		v, err := DecodeValue(sub)
		if err != nil {
			return nil, err
		}
		t[name] = v
	}
	return t, nil
}

// EncodeArray writes a FieldArray: a u32 byte-length prefix followed by
// tagged values in order (no names).
func EncodeArray(w io.Writer, a Array) error {
	n, err := arrayByteLength(a)
	if err != nil {
		return err
	}

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(n))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	for _, v := range a {
		if err := EncodeValue(w, v); err != nil {
			return err
		}
	}
	return nil
}

// DecodeArray reads a u32-length-prefixed FieldArray, decoding values
// until exactly that many bytes are consumed.
func DecodeArray(r *bytes.Reader) (Array, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if uint64(r.Len()) < uint64(n) {
		return nil, amqperr.Wrap(amqperr.ErrMalformedFrame, "field array body")
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, amqperr.Wrap(amqperr.ErrMalformedFrame, "field array body")
	}
	sub := bytes.NewReader(body)

	var a Array
	for sub.Len() > 0 {
		v, err := DecodeValue(sub)
		if err != nil {
			return nil, err
		}
		a = append(a, v)
	}
	return a, nil
}

func tableByteLength(t Table) (int, error) {
	total := 0
	for name, v := range t {
		if len(name) > math.MaxUint8 {
			return 0, amqperr.ErrShortStringOverflow
		}
		vn, err := EncodedSize(v)
		if err != nil {
			return 0, err
		}
		total += 1 + len(name) + vn
	}
	if total > math.MaxUint32 {
		return 0, amqperr.ErrTableLengthOverflow
	}
	return total, nil
}

func arrayByteLength(a Array) (int, error) {
	total := 0
	for _, v := range a {
		vn, err := EncodedSize(v)
		if err != nil {
			return 0, err
		}
		total += vn
	}
	if total > math.MaxUint32 {
		return 0, amqperr.ErrTableLengthOverflow
	}
	return total, nil
}

func sortedNames(t Table) []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
