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

// Package wire implements the AMQP 0-9-1 type codec: scalar, string,
// array, table, decimal and byte-array encode/decode.
//
// All integers are big-endian (encoding/binary.BigEndian). Strings and
// byte arrays are passed through verbatim — UTF-8 validity is the
// broker's concern, not the codec's.
package wire

import (
	"github.com/rabbitgo/amqp091/amqperr"
)

// Tag identifies the on-wire type of a FieldValue entry. The tag set
// follows the RabbitMQ errata, not the strict 0-9-1 spec: 's' is int16
// (not the deprecated short string alias) and 'x' (byte array) exists.
type Tag byte

const (
	TagBoolean     Tag = 't'
	TagShortShort  Tag = 'b' // int8
	TagOctet       Tag = 'B' // uint8
	TagShort       Tag = 's' // int16
	TagShortU      Tag = 'u' // uint16
	TagLong        Tag = 'I' // int32
	TagLongU       Tag = 'i' // uint32
	TagLongLong    Tag = 'l' // int64
	TagFloat       Tag = 'f'
	TagDouble      Tag = 'd'
	TagDecimal     Tag = 'D'
	TagLongStr     Tag = 'S'
	TagFieldArray  Tag = 'A'
	TagTimestamp   Tag = 'T'
	TagFieldTable  Tag = 'F'
	TagVoid        Tag = 'V'
	TagByteArray   Tag = 'x'
)

// Decimal is a RabbitMQ decimal value: an unscaled 32-bit signed integer
// and an 8-bit scale, i.e. value == Unscaled / 10^Scale.
type Decimal struct {
	Scale    uint8
	Unscaled int32
}

// Table is a FieldTable: an unordered set of (short-string name →
// tagged value) entries, with unique keys.
type Table map[string]any

// Array is a FieldArray: an ordered sequence of tagged values.
type Array []any

// ShortString validates that s fits the u8 length prefix required for
// AMQP short strings (field table keys, a handful of method arguments).
// Construction fails if it does not.
type ShortString string

// NewShortString validates s and returns it as a ShortString, or
// ErrShortStringOverflow if its UTF-8 byte length exceeds 255.
func NewShortString(s string) (ShortString, error) {
	if len(s) > 255 {
		return "", amqperr.ErrShortStringOverflow
	}
	return ShortString(s), nil
}
