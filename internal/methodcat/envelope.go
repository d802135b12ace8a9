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
	"io"

	"github.com/rabbitgo/amqp091/amqperr"
)

// Body is implemented by every method argument struct in this package.
type Body interface {
	Encode(w io.Writer) error
}

// EncodeHeader writes the (class-id, method-id) pair a method frame's
// payload starts with: method payload is class-id, method-id,
// arguments...
func EncodeHeader(w io.Writer, h MethodHeader) error {
	if err := writeShort(w, h.ClassID); err != nil {
		return err
	}
	return writeShort(w, h.MethodID)
}

// DecodeHeader reads the (class-id, method-id) pair from the front of a
// method frame payload.
func DecodeHeader(r *bytes.Reader) (MethodHeader, error) {
	classID, err := readShort(r)
	if err != nil {
		return MethodHeader{}, err
	}
	methodID, err := readShort(r)
	if err != nil {
		return MethodHeader{}, err
	}
	return MethodHeader{ClassID: classID, MethodID: methodID}, nil
}

// EncodeMethod writes a complete method frame payload: the class/method
// header followed by body's arguments.
func EncodeMethod(w io.Writer, h MethodHeader, body Body) error {
	if err := EncodeHeader(w, h); err != nil {
		return err
	}
	return body.Encode(w)
}

// SplitMethod decodes the leading (class-id, method-id) header from a
// raw method frame payload and returns the header plus a reader
// positioned at the start of the argument bytes.
func SplitMethod(payload []byte) (MethodHeader, *bytes.Reader, error) {
	r := bytes.NewReader(payload)
	h, err := DecodeHeader(r)
	if err != nil {
		return MethodHeader{}, nil, amqperr.Wrap(err, "method frame header")
	}
	return h, r, nil
}
