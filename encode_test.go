// SPDX-FileCopyrightText: 2021 The mpack Authors
//
// SPDX-License-Identifier: MIT

package mpack

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarshalIntegerVectors(t *testing.T) {
	r := require.New(t)

	tcs := []struct {
		in   interface{}
		want []byte
	}{
		{int64(0), []byte{0x00}},
		{int64(1), []byte{0x01}},
		{int64(0x7f), []byte{0x7f}},
		{int64(128), []byte{0xcc, 0x80}},
		{int64(255), []byte{0xcc, 0xff}},
		{int64(256), []byte{0xcd, 0x01, 0x00}},
		{int64(65535), []byte{0xcd, 0xff, 0xff}},
		{int64(65536), []byte{0xce, 0x00, 0x01, 0x00, 0x00}},
		{int64(0xffffffff), []byte{0xce, 0xff, 0xff, 0xff, 0xff}},
		{int64(0x100000000), []byte{0xcf, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00}},
		{int64(math.MaxInt64), []byte{0xcf, 0x7f, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{uint64(math.MaxUint64), []byte{0xcf, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{int64(-1), []byte{0xff}},
		{int64(-32), []byte{0xe0}},
		{int64(-33), []byte{0xd0, 0xdf}},
		{int64(-128), []byte{0xd0, 0x80}},
		{int64(-129), []byte{0xd1, 0xff, 0x7f}},
		{int64(-32768), []byte{0xd1, 0x80, 0x00}},
		{int64(-32769), []byte{0xd2, 0xff, 0xff, 0x7f, 0xff}},
		{int64(-2147483648), []byte{0xd2, 0x80, 0x00, 0x00, 0x00}},
		{int64(-2147483649), []byte{0xd3, 0xff, 0xff, 0xff, 0xff, 0x7f, 0xff, 0xff, 0xff}},
		{int64(math.MinInt64), []byte{0xd3, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{int(42), []byte{0x2a}},
		{int8(-1), []byte{0xff}},
		{uint16(300), []byte{0xcd, 0x01, 0x2c}},
	}

	for _, tc := range tcs {
		got, err := Marshal(tc.in, nil)
		r.NoError(err, "marshal %v", tc.in)
		r.Equal(tc.want, got, "wire bytes for %v", tc.in)
	}
}

func TestMarshalScalarVectors(t *testing.T) {
	r := require.New(t)

	tcs := []struct {
		in   interface{}
		want []byte
	}{
		{nil, []byte{0xc0}},
		{false, []byte{0xc2}},
		{true, []byte{0xc3}},
		{float32(1.5), []byte{0xca, 0x3f, 0xc0, 0x00, 0x00}},
		{float64(1.5), []byte{0xcb, 0x3f, 0xf8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"", []byte{0xa0}},
		{"hello", append([]byte{0xa5}, "hello"...)},
		{[]byte{}, []byte{0xc4, 0x00}},
		{[]byte{0x01, 0x02}, []byte{0xc4, 0x02, 0x01, 0x02}},
		{[]interface{}{}, []byte{0x90}},
		{[]interface{}{int64(1), int64(2), int64(3)}, []byte{0x93, 0x01, 0x02, 0x03}},
		{map[interface{}]interface{}{}, []byte{0x80}},
		{map[interface{}]interface{}{int64(1): true}, []byte{0x81, 0x01, 0xc3}},
	}

	for _, tc := range tcs {
		got, err := Marshal(tc.in, nil)
		r.NoError(err, "marshal %v", tc.in)
		r.Equal(tc.want, got, "wire bytes for %v", tc.in)
	}
}

func TestMarshalStringLengthClasses(t *testing.T) {
	r := require.New(t)

	tcs := []struct {
		length int
		prefix []byte
	}{
		{31, []byte{0xbf}},
		{32, []byte{0xd9, 0x20}},
		{255, []byte{0xd9, 0xff}},
		{256, []byte{0xda, 0x01, 0x00}},
		{65535, []byte{0xda, 0xff, 0xff}},
		{65536, []byte{0xdb, 0x00, 0x01, 0x00, 0x00}},
	}

	for _, tc := range tcs {
		s := strings.Repeat("a", tc.length)
		got, err := Marshal(s, nil)
		r.NoError(err)
		r.Equal(tc.prefix, got[:len(tc.prefix)], "prefix for length %d", tc.length)
		r.Len(got, len(tc.prefix)+tc.length)
	}
}

func TestMarshalArrayLengthBoundary(t *testing.T) {
	r := require.New(t)

	xs := make([]interface{}, 15)
	for i := range xs {
		xs[i] = int64(i)
	}
	got, err := Marshal(xs, nil)
	r.NoError(err)
	r.Equal(byte(0x9f), got[0], "15 elements still use the fixed form")

	// 16 elements escalate to the 16-bit form even though 16 "feels" small.
	xs = append(xs, int64(15))
	got, err = Marshal(xs, nil)
	r.NoError(err)
	r.Equal([]byte{0xdc, 0x00, 0x10}, got[:3])
}

func TestMarshalMapLengthBoundary(t *testing.T) {
	r := require.New(t)

	m := make(map[interface{}]interface{}, 16)
	for i := 0; i < 16; i++ {
		m[int64(i)] = true
	}
	got, err := Marshal(m, nil)
	r.NoError(err)
	r.Equal([]byte{0xde, 0x00, 0x10}, got[:3])
}

func TestMarshalFloatPrecision(t *testing.T) {
	r := require.New(t)

	// Platform default is double on every Go target.
	got, err := Marshal(float64(0.5), nil)
	r.NoError(err)
	r.Equal(byte(0xcb), got[0])

	got, err = Marshal(float64(0.5), &EncodeOptions{ForceFloatPrecision: SingleFloat})
	r.NoError(err)
	r.Equal([]byte{0xca, 0x3f, 0x00, 0x00, 0x00}, got)

	got, err = Marshal(float64(0.5), &EncodeOptions{ForceFloatPrecision: DoubleFloat})
	r.NoError(err)
	r.Equal(byte(0xcb), got[0])
}

func TestMarshalExtLengthClasses(t *testing.T) {
	r := require.New(t)

	tcs := []struct {
		length int
		prefix []byte
	}{
		{0, []byte{0xc7, 0x00, 0x05}},
		{1, []byte{0xd4, 0x05}},
		{2, []byte{0xd5, 0x05}},
		{3, []byte{0xc7, 0x03, 0x05}},
		{4, []byte{0xd6, 0x05}},
		{8, []byte{0xd7, 0x05}},
		{16, []byte{0xd8, 0x05}},
		{17, []byte{0xc7, 0x11, 0x05}},
		{255, []byte{0xc7, 0xff, 0x05}},
		{256, []byte{0xc8, 0x01, 0x00, 0x05}},
		{65536, []byte{0xc9, 0x00, 0x01, 0x00, 0x00, 0x05}},
	}

	for _, tc := range tcs {
		data := bytes.Repeat([]byte{0xaa}, tc.length)
		got, err := Marshal(Ext{Type: 5, Data: data}, nil)
		r.NoError(err)
		r.Equal(tc.prefix, got[:len(tc.prefix)], "prefix for payload length %d", tc.length)
		r.Len(got, len(tc.prefix)+tc.length)
	}
}

func TestMarshalNegativeExtCode(t *testing.T) {
	r := require.New(t)

	got, err := Marshal(Ext{Type: -1, Data: []byte{0x01}}, nil)
	r.NoError(err)
	r.Equal([]byte{0xd4, 0xff, 0x01}, got)
}

func TestMarshalUnsupportedType(t *testing.T) {
	r := require.New(t)

	_, err := Marshal(struct{ A int }{1}, &EncodeOptions{Registry: NewRegistry()})
	r.Error(err)
	r.True(IsUnsupportedType(err))
	r.Contains(err.Error(), "struct")

	_, err = Marshal(make(chan int), &EncodeOptions{Registry: NewRegistry()})
	r.True(IsUnsupportedType(err))
}

func TestEncoderTraversalOrder(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	enc := NewEncoder(&buf, nil)
	r.NoError(enc.Encode([]interface{}{int64(1), "ab"}))
	r.NoError(enc.Encode(nil))
	r.Equal([]byte{0x92, 0x01, 0xa2, 'a', 'b', 0xc0}, buf.Bytes())
}
