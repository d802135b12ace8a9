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

package methodcat

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/rabbitgo/amqp091/amqperr"
)

func writeOctet(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

func readOctet(r *bytes.Reader) (uint8, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, amqperr.Wrap(amqperr.ErrMalformedFrame, "octet argument")
	}
	return b, nil
}

func writeShort(w io.Writer, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readShort(r *bytes.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, amqperr.Wrap(amqperr.ErrMalformedFrame, "short argument")
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func writeLong(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readLong(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, amqperr.Wrap(amqperr.ErrMalformedFrame, "long argument")
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func writeLongLong(w io.Writer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readLongLong(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, amqperr.Wrap(amqperr.ErrMalformedFrame, "longlong argument")
	}
	return binary.BigEndian.Uint64(b[:]), nil
}
