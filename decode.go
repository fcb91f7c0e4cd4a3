// SPDX-FileCopyrightText: 2021 The mpack Authors
//
// SPDX-License-Identifier: MIT

package mpack

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/elliotchance/orderedmap/v3"
	"github.com/pkg/errors"
)

// Unmarshal decodes the first value stored in data. A nil opts means
// defaults. Trailing bytes after the first value are ignored.
func Unmarshal(data []byte, opts *DecodeOptions) (interface{}, error) {
	return NewDecoder(bytes.NewReader(data), opts).Decode()
}

// Decoder is the buffered driver: it reads from an io.Reader, retrying
// short reads synchronously until each requirement is met.
type Decoder struct {
	d decoder
}

// NewDecoder returns a decoder reading from r. A nil opts means defaults.
func NewDecoder(r io.Reader, opts *DecodeOptions) *Decoder {
	if opts == nil {
		opts = &DecodeOptions{}
	}
	return &Decoder{d: decoder{src: &readerFeed{r: r}, opts: opts}}
}

// Decode reads one value. Integer forms decode to int64, except unsigned
// 64-bit values above the int64 range, which decode to uint64.
func (dec *Decoder) Decode() (interface{}, error) {
	return dec.d.decode(context.TODO())
}

// feed is the byte-acquisition half of a decode driver. The grammar below
// is shared by both drivers; only readExactly differs.
type feed interface {
	readExactly(ctx context.Context, n int) ([]byte, error)
}

// readerFeed satisfies byte requirements by looping reads until the
// requested count accumulated, failing with InsufficientDataError when the
// reader runs dry while short.
type readerFeed struct {
	r io.Reader
}

func (f *readerFeed) readExactly(ctx context.Context, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	var got int
	for got < n {
		m, err := f.r.Read(buf[got:])
		got += m
		if got == n {
			break
		}
		if err != nil || m == 0 {
			return nil, InsufficientDataError{Want: n, Got: got}
		}
	}
	return buf, nil
}

type decoder struct {
	src  feed
	opts *DecodeOptions
}

func (d *decoder) decode(ctx context.Context) (interface{}, error) {
	b, err := d.src.readExactly(ctx, 1)
	if err != nil {
		return nil, err
	}
	c := b[0]

	switch {
	case c <= 0x7f: // positive fixint
		return int64(c), nil
	case c >= 0xe0: // negative fixint
		return int64(int8(c)), nil
	case c >= tagFixMap && c <= tagFixMap|0x0f:
		return d.decodeMap(ctx, uint32(c&0x0f))
	case c >= tagFixArray && c <= tagFixArray|0x0f:
		return d.decodeArray(ctx, uint32(c&0x0f))
	case c >= tagFixStr && c <= tagFixStr|0x1f:
		return d.decodeString(ctx, uint32(c&0x1f))
	}

	switch c {
	case tagNil:
		return nil, nil
	case tagReserved:
		return nil, ReservedCodeError{Code: c}
	case tagFalse:
		return false, nil
	case tagTrue:
		return true, nil

	case tagBin8, tagBin16, tagBin32:
		n, err := d.length(ctx, 1<<(c-tagBin8))
		if err != nil {
			return nil, err
		}
		data, err := d.src.readExactly(ctx, int(n))
		if err != nil {
			return nil, err
		}
		if data == nil {
			data = []byte{}
		}
		return data, nil

	case tagExt8, tagExt16, tagExt32:
		n, err := d.length(ctx, 1<<(c-tagExt8))
		if err != nil {
			return nil, err
		}
		return d.decodeExt(ctx, n)

	case tagFloat32:
		b, err := d.src.readExactly(ctx, 4)
		if err != nil {
			return nil, err
		}
		return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
	case tagFloat64:
		b, err := d.src.readExactly(ctx, 8)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil

	case tagUint8, tagUint16, tagUint32, tagUint64:
		b, err := d.src.readExactly(ctx, 1<<(c-tagUint8))
		if err != nil {
			return nil, err
		}
		u := readUint(b)
		if u > math.MaxInt64 {
			return u, nil
		}
		return int64(u), nil

	case tagInt8:
		b, err := d.src.readExactly(ctx, 1)
		if err != nil {
			return nil, err
		}
		return int64(int8(b[0])), nil
	case tagInt16:
		b, err := d.src.readExactly(ctx, 2)
		if err != nil {
			return nil, err
		}
		return int64(int16(binary.BigEndian.Uint16(b))), nil
	case tagInt32:
		b, err := d.src.readExactly(ctx, 4)
		if err != nil {
			return nil, err
		}
		return int64(int32(binary.BigEndian.Uint32(b))), nil
	case tagInt64:
		b, err := d.src.readExactly(ctx, 8)
		if err != nil {
			return nil, err
		}
		return int64(binary.BigEndian.Uint64(b)), nil

	case tagFixExt1:
		return d.decodeExt(ctx, 1)
	case tagFixExt2:
		return d.decodeExt(ctx, 2)
	case tagFixExt4:
		return d.decodeExt(ctx, 4)
	case tagFixExt8:
		return d.decodeExt(ctx, 8)
	case tagFixExt16:
		return d.decodeExt(ctx, 16)

	case tagStr8, tagStr16, tagStr32:
		n, err := d.length(ctx, 1<<(c-tagStr8))
		if err != nil {
			return nil, err
		}
		return d.decodeString(ctx, n)

	case tagArray16, tagArray32:
		n, err := d.length(ctx, 2<<(c-tagArray16))
		if err != nil {
			return nil, err
		}
		return d.decodeArray(ctx, n)

	case tagMap16, tagMap32:
		n, err := d.length(ctx, 2<<(c-tagMap16))
		if err != nil {
			return nil, err
		}
		return d.decodeMap(ctx, n)
	}

	// The switches above cover all 256 tag values.
	panic(fmt.Sprintf("mpack: unhandled tag byte 0x%02x", c))
}

// length reads a big-endian length field of the given byte width.
func (d *decoder) length(ctx context.Context, width int) (uint32, error) {
	b, err := d.src.readExactly(ctx, width)
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint32(b[0]), nil
	case 2:
		return uint32(binary.BigEndian.Uint16(b)), nil
	default:
		return binary.BigEndian.Uint32(b), nil
	}
}

func readUint(b []byte) uint64 {
	var u uint64
	for _, c := range b {
		u = u<<8 | uint64(c)
	}
	return u
}

func (d *decoder) decodeString(ctx context.Context, n uint32) (interface{}, error) {
	data, err := d.src.readExactly(ctx, int(n))
	if err != nil {
		return nil, err
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	if d.opts.AllowInvalidUTF8 {
		return data, nil
	}
	return nil, InvalidStringError{}
}

func (d *decoder) decodeArray(ctx context.Context, n uint32) (interface{}, error) {
	xs := []interface{}{}
	for i := uint32(0); i < n; i++ {
		x, err := d.decode(ctx)
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
	if d.opts.UseFixedSequence {
		return AsFixedSequence(xs), nil
	}
	return xs, nil
}

func (d *decoder) decodeMap(ctx context.Context, n uint32) (interface{}, error) {
	if d.opts.UseOrderedMap {
		m := orderedmap.NewOrderedMap[interface{}, interface{}]()
		for i := uint32(0); i < n; i++ {
			k, err := d.decodeKey(ctx)
			if err != nil {
				return nil, err
			}
			if _, ok := m.Get(k); ok {
				return nil, DuplicateKeyError{Key: k}
			}
			v, err := d.decode(ctx)
			if err != nil {
				return nil, err
			}
			m.Set(k, v)
		}
		return m, nil
	}

	m := make(map[interface{}]interface{}, n)
	for i := uint32(0); i < n; i++ {
		k, err := d.decodeKey(ctx)
		if err != nil {
			return nil, err
		}
		if _, ok := m[k]; ok {
			return nil, DuplicateKeyError{Key: k}
		}
		v, err := d.decode(ctx)
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}

// decodeKey decodes one map key and normalizes it before the corresponding
// value is read, so the stream position is consistent when a key is
// rejected.
func (d *decoder) decodeKey(ctx context.Context) (interface{}, error) {
	k, err := d.decode(ctx)
	if err != nil {
		return nil, err
	}
	return normalizeKey(k)
}

func (d *decoder) decodeExt(ctx context.Context, n uint32) (interface{}, error) {
	tb, err := d.src.readExactly(ctx, 1)
	if err != nil {
		return nil, err
	}
	code := int8(tb[0])

	data, err := d.src.readExactly(ctx, int(n))
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}

	if fn, ok := d.opts.ExtOverrides[code]; ok {
		v, err := fn(data, d.opts)
		return v, errors.Wrapf(err, "mpack: ext override for type %d", code)
	}
	if h, ok := d.opts.registry().forCode(code); ok {
		v, err := h.UnpackExt(data, d.opts)
		return v, errors.Wrapf(err, "mpack: unpacking ext type %d", code)
	}
	return nil, UnsupportedTypeError{Type: fmt.Sprintf("ext type %d", code)}
}
