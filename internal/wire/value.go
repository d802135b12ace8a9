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

// EncodeValue writes a tagged FieldValue: one tag byte followed by the
// tag-specific encoding. v must be one of the Go types this package
// maps a FieldValue tag to (see DecodeValue for the inverse mapping).
func EncodeValue(w io.Writer, v any) error {
	tag, err := tagFor(v)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(tag)}); err != nil {
		return err
	}
	return encodeTagged(w, tag, v)
}

func tagFor(v any) (Tag, error) {
	switch v.(type) {
	case bool:
		return TagBoolean, nil
	case int8:
		return TagShortShort, nil
	case uint8:
		return TagOctet, nil
	case int16:
		return TagShort, nil
	case uint16:
		return TagShortU, nil
	case int32:
		return TagLong, nil
	case uint32:
		return TagLongU, nil
	case int64:
		return TagLongLong, nil
	case float32:
		return TagFloat, nil
	case float64:
		return TagDouble, nil
	case Decimal:
		return TagDecimal, nil
	case string:
		return TagLongStr, nil
	case Array:
		return TagFieldArray, nil
	case uint64:
		return TagTimestamp, nil
	case Table:
		return TagFieldTable, nil
	case nil:
		return TagVoid, nil
	case []byte:
		return TagByteArray, nil
	default:
		return 0, amqperr.Errorf("wire: %T is not a valid FieldValue", v)
	}
}

func encodeTagged(w io.Writer, tag Tag, v any) error {
	switch tag {
	case TagBoolean:
		b := byte(0)
		if v.(bool) {
			b = 1
		}
		_, err := w.Write([]byte{b})
		return err
	case TagShortShort:
		_, err := w.Write([]byte{byte(v.(int8))})
		return err
	case TagOctet:
		_, err := w.Write([]byte{v.(uint8)})
		return err
	case TagShort:
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(v.(int16)))
		_, err := w.Write(b[:])
		return err
	case TagShortU:
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], v.(uint16))
		_, err := w.Write(b[:])
		return err
	case TagLong:
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(v.(int32)))
		_, err := w.Write(b[:])
		return err
	case TagLongU:
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], v.(uint32))
		_, err := w.Write(b[:])
		return err
	case TagLongLong:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(v.(int64)))
		_, err := w.Write(b[:])
		return err
	case TagFloat:
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], math.Float32bits(v.(float32)))
		_, err := w.Write(b[:])
		return err
	case TagDouble:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(v.(float64)))
		_, err := w.Write(b[:])
		return err
	case TagDecimal:
		d := v.(Decimal)
		var b [5]byte
		b[0] = d.Scale
		binary.BigEndian.PutUint32(b[1:], uint32(d.Unscaled))
		_, err := w.Write(b[:])
		return err
	case TagLongStr:
		return EncodeLongString(w, v.(string))
	case TagFieldArray:
		return EncodeArray(w, v.(Array))
	case TagTimestamp:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], v.(uint64))
		_, err := w.Write(b[:])
		return err
	case TagFieldTable:
		return EncodeTable(w, v.(Table))
	case TagVoid:
		return nil
	case TagByteArray:
		return EncodeByteArray(w, v.([]byte))
	default:
		return amqperr.ErrUnknownTag
	}
}

// DecodeValue reads one tag byte followed by its tag-specific payload
// and returns the decoded FieldValue as the corresponding Go type.
func DecodeValue(r *bytes.Reader) (any, error) {
	tb, err := r.ReadByte()
	if err != nil {
		return nil, amqperr.Wrap(amqperr.ErrMalformedFrame, "field value tag")
	}

	switch Tag(tb) {
	case TagBoolean:
		b, err := r.ReadByte()
		if err != nil {
			return nil, amqperr.Wrap(amqperr.ErrMalformedFrame, "boolean")
		}
		return b != 0, nil
	case TagShortShort:
		b, err := r.ReadByte()
		if err != nil {
			return nil, amqperr.Wrap(amqperr.ErrMalformedFrame, "short-short")
		}
		return int8(b), nil
	case TagOctet:
		b, err := r.ReadByte()
		if err != nil {
			return nil, amqperr.Wrap(amqperr.ErrMalformedFrame, "octet")
		}
		return b, nil
	case TagShort:
		v, err := readN(r, 2)
		if err != nil {
			return nil, err
		}
		return int16(binary.BigEndian.Uint16(v)), nil
	case TagShortU:
		v, err := readN(r, 2)
		if err != nil {
			return nil, err
		}
		return binary.BigEndian.Uint16(v), nil
	case TagLong:
		v, err := readN(r, 4)
		if err != nil {
			return nil, err
		}
		return int32(binary.BigEndian.Uint32(v)), nil
	case TagLongU:
		v, err := readN(r, 4)
		if err != nil {
			return nil, err
		}
		return binary.BigEndian.Uint32(v), nil
	case TagLongLong:
		v, err := readN(r, 8)
		if err != nil {
			return nil, err
		}
		return int64(binary.BigEndian.Uint64(v)), nil
	case TagFloat:
		v, err := readN(r, 4)
		if err != nil {
			return nil, err
		}
		return math.Float32frombits(binary.BigEndian.Uint32(v)), nil
	case TagDouble:
		v, err := readN(r, 8)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(v)), nil
	case TagDecimal:
		v, err := readN(r, 5)
		if err != nil {
			return nil, err
		}
		return Decimal{Scale: v[0], Unscaled: int32(binary.BigEndian.Uint32(v[1:]))}, nil
	case TagLongStr:
		return DecodeLongString(r)
	case TagFieldArray:
		return DecodeArray(r)
	case TagTimestamp:
		v, err := readN(r, 8)
		if err != nil {
			return nil, err
		}
		return binary.BigEndian.Uint64(v), nil
	case TagFieldTable:
		return DecodeTable(r)
	case TagVoid:
		return nil, nil
	case TagByteArray:
		return DecodeByteArray(r)
	default:
		return nil, amqperr.ErrUnknownTag
	}
}

func readN(r *bytes.Reader, n int) ([]byte, error) {
	if r.Len() < n {
		return nil, amqperr.Wrap(amqperr.ErrMalformedFrame, "field value body")
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, amqperr.Wrap(amqperr.ErrMalformedFrame, "field value body")
	}
	return b, nil
}

// EncodedSize returns the number of bytes EncodeValue would write for
// v, tag byte included. Used by table/array encoders to compute the
// u32 byte-length prefix without a two-pass encode.
func EncodedSize(v any) (int, error) {
	tag, err := tagFor(v)
	if err != nil {
		return 0, err
	}

	const tagSize = 1
	switch tag {
	case TagBoolean, TagShortShort, TagOctet:
		return tagSize + 1, nil
	case TagShort, TagShortU:
		return tagSize + 2, nil
	case TagLong, TagLongU, TagFloat:
		return tagSize + 4, nil
	case TagLongLong, TagDouble, TagTimestamp:
		return tagSize + 8, nil
	case TagDecimal:
		return tagSize + 1 + 4, nil
	case TagVoid:
		return tagSize, nil
	case TagLongStr:
		return tagSize + 4 + len(v.(string)), nil
	case TagByteArray:
		return tagSize + 4 + len(v.([]byte)), nil
	case TagFieldArray:
		n, err := arrayByteLength(v.(Array))
		if err != nil {
			return 0, err
		}
		return tagSize + 4 + n, nil
	case TagFieldTable:
		n, err := tableByteLength(v.(Table))
		if err != nil {
			return 0, err
		}
		return tagSize + 4 + n, nil
	default:
		return 0, amqperr.ErrUnknownTag
	}
}
