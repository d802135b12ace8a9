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

	"github.com/rabbitgo/amqp091/amqperr"
)

// EncodeShortString writes a u8 length prefix followed by the raw
// bytes of s. Callers must validate s via NewShortString first; this
// re-validates defensively and returns ErrShortStringOverflow rather
// than silently truncating.
func EncodeShortString(w io.Writer, s string) error {
	if len(s) > math.MaxUint8 {
		return amqperr.ErrShortStringOverflow
	}
	if _, err := w.Write([]byte{byte(len(s))}); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// DecodeShortString reads a u8-length-prefixed short string.
func DecodeShortString(r *bytes.Reader) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", amqperr.Wrap(amqperr.ErrMalformedFrame, "short string length")
	}
	if r.Len() < int(n) {
		return "", amqperr.Wrap(amqperr.ErrMalformedFrame, "short string body")
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", amqperr.Wrap(amqperr.ErrMalformedFrame, "short string body")
	}
	return string(b), nil
}

// EncodeLongString writes a u32 byte-length prefix followed by the raw
// bytes of s; the length is the byte count of the payload.
func EncodeLongString(w io.Writer, s string) error {
	if len(s) > math.MaxUint32 {
		return amqperr.ErrTableLengthOverflow
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// DecodeLongString reads a u32-length-prefixed long string.
func DecodeLongString(r *bytes.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	if uint64(r.Len()) < uint64(n) {
		return "", amqperr.Wrap(amqperr.ErrMalformedFrame, "long string body")
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", amqperr.Wrap(amqperr.ErrMalformedFrame, "long string body")
	}
	return string(b), nil
}

// EncodeByteArray writes a u32 byte-length prefix followed by the raw
// bytes of b, identical framing to EncodeLongString but typed []byte.
func EncodeByteArray(w io.Writer, b []byte) error {
	if len(b) > math.MaxUint32 {
		return amqperr.ErrTableLengthOverflow
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// DecodeByteArray reads a u32-length-prefixed raw byte array.
func DecodeByteArray(r *bytes.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if uint64(r.Len()) < uint64(n) {
		return nil, amqperr.Wrap(amqperr.ErrMalformedFrame, "byte array body")
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, amqperr.Wrap(amqperr.ErrMalformedFrame, "byte array body")
	}
	return b, nil
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, amqperr.Wrap(amqperr.ErrMalformedFrame, "uint32 length prefix")
	}
	return binary.BigEndian.Uint32(b[:]), nil
}
