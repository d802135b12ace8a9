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
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabbitgo/amqp091/amqperr"
)

func roundTrip(t *testing.T, v any) any {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, EncodeValue(&buf, v))
	got, err := DecodeValue(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	return got
}

func TestFieldValueRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"bool-true", true},
		{"bool-false", false},
		{"short-short", int8(-12)},
		{"octet", uint8(250)},
		{"short", int16(-30000)},
		{"short-u", uint16(60000)},
		{"long", int32(-1 << 30)},
		{"long-u", uint32(1 << 31)},
		{"long-long", int64(-1 << 62)},
		{"float", float32(3.25)},
		{"double", float64(-2.5e100)},
		{"decimal", Decimal{Scale: 2, Unscaled: 12345}},
		{"long-string", "hello, amqp"},
		{"long-string-empty", ""},
		{"byte-array", []byte{0x01, 0x02, 0x03}},
		{"timestamp", uint64(1700000000)},
		{"void", nil},
		{"array-mixed", Array{int32(1), "two", true, Table{"k": uint8(3)}}},
		{"table-flat", Table{"a": int32(1), "b": "two", "c": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, tt.in)
			assert.Equal(t, tt.in, got)
		})
	}
}

func TestFieldValueRoundTripNestedTables(t *testing.T) {
	// nested to depth 4
	depth4 := Table{"d4": int32(42)}
	depth3 := Table{"d3": depth4}
	depth2 := Table{"d2": depth3}
	depth1 := Table{"d1": depth2}

	got := roundTrip(t, depth1)
	assert.Equal(t, depth1, got)
}

func TestFieldValueRoundTripArrayOfEveryVariant(t *testing.T) {
	a := Array{
		true, int8(1), uint8(2), int16(3), uint16(4), int32(5), uint32(6),
		int64(7), float32(8), float64(9), Decimal{Scale: 1, Unscaled: 10},
		"eleven", []byte{12}, uint64(13), nil, Table{"n": int32(14)},
	}
	got := roundTrip(t, a)
	assert.Equal(t, a, got)
}

func TestShortStringOverflow(t *testing.T) {
	_, err := NewShortString(strings.Repeat("x", 256))
	require.ErrorIs(t, err, amqperr.ErrShortStringOverflow)

	s, err := NewShortString(strings.Repeat("x", 255))
	require.NoError(t, err)
	assert.Len(t, s, 255)
}

func TestShortStringEncodingExactly255(t *testing.T) {
	var buf bytes.Buffer
	s := strings.Repeat("a", 255)
	require.NoError(t, EncodeShortString(&buf, s))

	encoded := buf.Bytes()
	require.Equal(t, byte(0xFF), encoded[0])
	assert.Len(t, encoded[1:], 255)

	got, err := DecodeShortString(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestTableEncodedLengthMatchesDeclaredByteLength(t *testing.T) {
	tbl := Table{
		"alpha": int32(1),
		"beta":  "two",
		"gamma": true,
		"delta": Table{"nested": uint8(9)},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeTable(&buf, tbl)) // not tagged, raw table encode
	n, err := tableByteLength(tbl)
	require.NoError(t, err)
	assert.Equal(t, 4+n, buf.Len())
}

func TestEmptyTableEncodesAsZeroLength(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeTable(&buf, Table{}))
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, buf.Bytes())
}

func TestDecodeTableMissingBytesFail(t *testing.T) {
	// declare a length longer than the actual entries to force a decode
	// failure: the reader holds fewer bytes than the table's length
	// prefix announces.
	var entry bytes.Buffer
	require.NoError(t, EncodeShortString(&entry, "k"))
	require.NoError(t, EncodeValue(&entry, int32(1)))

	var buf bytes.Buffer
	lenBuf := make([]byte, 4)
	// declare one byte more than the real entry length
	putUint32(lenBuf, uint32(entry.Len()+1))
	buf.Write(lenBuf)
	buf.Write(entry.Bytes())

	_, err := DecodeTable(bytes.NewReader(buf.Bytes()))
	require.Error(t, err)
}

func TestDecodeUnknownTagFails(t *testing.T) {
	_, err := DecodeValue(bytes.NewReader([]byte{'?'}))
	require.ErrorIs(t, err, amqperr.ErrUnknownTag)
}

// TestFieldTableManyEntries stands in for a large-entry-count table at
// a size that keeps the test suite fast; tableByteLength/
// EncodeTable/DecodeTable contain no entry-count-dependent limit, only
// a total-byte-length one (see TestTableEncodedLengthMatchesDeclaredByteLength).
func TestFieldTableManyEntries(t *testing.T) {
	const n = 1 << 14
	tbl := make(Table, n)
	for i := 0; i < n; i++ {
		tbl["k"+strconv.Itoa(i)] = int32(i)
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeTable(&buf, tbl))

	got, err := DecodeTable(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, len(tbl), len(got))
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
