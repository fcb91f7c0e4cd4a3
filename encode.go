// SPDX-FileCopyrightText: 2021 The mpack Authors
//
// SPDX-License-Identifier: MIT

package mpack

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"reflect"

	"github.com/elliotchance/orderedmap/v3"
	"github.com/pkg/errors"
)

// Marshal encodes v and returns the serialized bytes. A nil opts means
// defaults.
func Marshal(v interface{}, opts *EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf, opts).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encoder writes values to a sink incrementally, in traversal order.
type Encoder struct {
	w       io.Writer
	opts    *EncodeOptions
	scratch [9]byte
}

// NewEncoder returns an encoder writing to w. A nil opts means defaults.
func NewEncoder(w io.Writer, opts *EncodeOptions) *Encoder {
	if opts == nil {
		opts = &EncodeOptions{}
	}
	return &Encoder{w: w, opts: opts}
}

// Encode writes one value. It fails with UnsupportedTypeError when v
// matches no native case and no registry entry.
func (e *Encoder) Encode(v interface{}) error {
	return e.encode(v)
}

func (e *Encoder) encode(v interface{}) error {
	if v == nil {
		return e.writeByte(tagNil)
	}

	// Override registrations win over the native cases, so e.g. fixed
	// sequences can be routed through an extension instead of the array
	// form.
	t := reflect.TypeOf(v)
	if reg, ok := e.opts.registry().forType(t, true); ok {
		return e.encodeExtWith(reg, v)
	}

	switch x := v.(type) {
	case bool:
		if x {
			return e.writeByte(tagTrue)
		}
		return e.writeByte(tagFalse)
	case int:
		return e.encodeInt(int64(x))
	case int8:
		return e.encodeInt(int64(x))
	case int16:
		return e.encodeInt(int64(x))
	case int32:
		return e.encodeInt(int64(x))
	case int64:
		return e.encodeInt(x)
	case uint:
		return e.encodeUint(uint64(x))
	case uint8:
		return e.encodeUint(uint64(x))
	case uint16:
		return e.encodeUint(uint64(x))
	case uint32:
		return e.encodeUint(uint64(x))
	case uint64:
		return e.encodeUint(x)
	case float32:
		return e.encodeFloat32(x)
	case float64:
		return e.encodeFloat64(x)
	case string:
		return e.encodeString(x)
	case []byte:
		return e.encodeBinary(x)
	case []interface{}:
		return e.encodeArray(x)
	case map[interface{}]interface{}:
		return e.encodeMap(x)
	case map[string]interface{}:
		return e.encodeStringMap(x)
	case *orderedmap.OrderedMap[interface{}, interface{}]:
		return e.encodeOrderedMap(x)
	case Ext:
		return e.encodeExt(x.Type, x.Data)
	}

	// Fixed sequences pack as arrays unless an override claimed them
	// above.
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Array {
		return e.encodeFixedSequence(rv)
	}

	if reg, ok := e.opts.registry().forType(t, false); ok {
		return e.encodeExtWith(reg, v)
	}

	return UnsupportedTypeError{Type: fmt.Sprintf("%T", v)}
}

func (e *Encoder) encodeInt(i int64) error {
	if i >= 0 {
		return e.encodeUint(uint64(i))
	}
	switch {
	case i >= -32:
		return e.writeByte(byte(i))
	case i >= math.MinInt8:
		return e.write2(tagInt8, byte(i))
	case i >= math.MinInt16:
		return e.writeUint16(tagInt16, uint16(i))
	case i >= math.MinInt32:
		return e.writeUint32(tagInt32, uint32(i))
	default:
		return e.writeUint64(tagInt64, uint64(i))
	}
}

func (e *Encoder) encodeUint(u uint64) error {
	switch {
	case u < 1<<7:
		return e.writeByte(byte(u))
	case u < 1<<8:
		return e.write2(tagUint8, byte(u))
	case u < 1<<16:
		return e.writeUint16(tagUint16, uint16(u))
	case u < 1<<32:
		return e.writeUint32(tagUint32, uint32(u))
	default:
		return e.writeUint64(tagUint64, u)
	}
}

func (e *Encoder) encodeFloat32(f float32) error {
	return e.writeUint32(tagFloat32, math.Float32bits(f))
}

func (e *Encoder) encodeFloat64(f float64) error {
	p := e.opts.ForceFloatPrecision
	if p == PlatformFloat {
		p = platformFloat
	}
	if p == SingleFloat {
		return e.writeUint32(tagFloat32, math.Float32bits(float32(f)))
	}
	return e.writeUint64(tagFloat64, math.Float64bits(f))
}

func (e *Encoder) encodeString(s string) error {
	l := uint64(len(s))
	switch {
	case l < 32:
		if err := e.writeByte(tagFixStr | byte(l)); err != nil {
			return err
		}
	case l < 1<<8:
		if err := e.write2(tagStr8, byte(l)); err != nil {
			return err
		}
	case l < 1<<16:
		if err := e.writeUint16(tagStr16, uint16(l)); err != nil {
			return err
		}
	case l < 1<<32:
		if err := e.writeUint32(tagStr32, uint32(l)); err != nil {
			return err
		}
	default:
		return UnsupportedTypeError{Type: "huge string"}
	}
	return e.write([]byte(s))
}

func (e *Encoder) encodeBinary(b []byte) error {
	l := uint64(len(b))
	switch {
	case l < 1<<8:
		if err := e.write2(tagBin8, byte(l)); err != nil {
			return err
		}
	case l < 1<<16:
		if err := e.writeUint16(tagBin16, uint16(l)); err != nil {
			return err
		}
	case l < 1<<32:
		if err := e.writeUint32(tagBin32, uint32(l)); err != nil {
			return err
		}
	default:
		return UnsupportedTypeError{Type: "huge binary"}
	}
	return e.write(b)
}

func (e *Encoder) encodeArrayLen(n int) error {
	l := uint64(n)
	switch {
	case l < 16:
		return e.writeByte(tagFixArray | byte(l))
	case l < 1<<16:
		return e.writeUint16(tagArray16, uint16(l))
	case l < 1<<32:
		return e.writeUint32(tagArray32, uint32(l))
	default:
		return UnsupportedTypeError{Type: "huge array"}
	}
}

func (e *Encoder) encodeArray(xs []interface{}) error {
	if err := e.encodeArrayLen(len(xs)); err != nil {
		return err
	}
	for _, x := range xs {
		if err := e.encode(x); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeFixedSequence(rv reflect.Value) error {
	if err := e.encodeArrayLen(rv.Len()); err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		if err := e.encode(rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeMapLen(n int) error {
	l := uint64(n)
	switch {
	case l < 16:
		return e.writeByte(tagFixMap | byte(l))
	case l < 1<<16:
		return e.writeUint16(tagMap16, uint16(l))
	case l < 1<<32:
		return e.writeUint32(tagMap32, uint32(l))
	default:
		return UnsupportedTypeError{Type: "huge map"}
	}
}

func (e *Encoder) encodeMap(m map[interface{}]interface{}) error {
	if err := e.encodeMapLen(len(m)); err != nil {
		return err
	}
	for k, v := range m {
		if err := e.encode(k); err != nil {
			return err
		}
		if err := e.encode(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeStringMap(m map[string]interface{}) error {
	if err := e.encodeMapLen(len(m)); err != nil {
		return err
	}
	for k, v := range m {
		if err := e.encodeString(k); err != nil {
			return err
		}
		if err := e.encode(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeOrderedMap(m *orderedmap.OrderedMap[interface{}, interface{}]) error {
	if err := e.encodeMapLen(m.Len()); err != nil {
		return err
	}
	for el := m.Front(); el != nil; el = el.Next() {
		if err := e.encode(el.Key); err != nil {
			return err
		}
		if err := e.encode(el.Value); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeExtWith(reg *registration, v interface{}) error {
	payload, err := reg.handler.PackExt(v, e.opts)
	if err != nil {
		return errors.Wrapf(err, "mpack: packing ext type %d", reg.code)
	}
	return e.encodeExt(reg.code, payload)
}

func (e *Encoder) encodeExt(code int8, data []byte) error {
	var fixed byte
	switch len(data) {
	case 1:
		fixed = tagFixExt1
	case 2:
		fixed = tagFixExt2
	case 4:
		fixed = tagFixExt4
	case 8:
		fixed = tagFixExt8
	case 16:
		fixed = tagFixExt16
	}
	if fixed != 0 {
		if err := e.write2(fixed, byte(code)); err != nil {
			return err
		}
		return e.write(data)
	}

	l := uint64(len(data))
	switch {
	case l < 1<<8:
		if err := e.write2(tagExt8, byte(l)); err != nil {
			return err
		}
	case l < 1<<16:
		if err := e.writeUint16(tagExt16, uint16(l)); err != nil {
			return err
		}
	case l < 1<<32:
		if err := e.writeUint32(tagExt32, uint32(l)); err != nil {
			return err
		}
	default:
		return UnsupportedTypeError{Type: "huge ext data"}
	}
	if err := e.writeByte(byte(code)); err != nil {
		return err
	}
	return e.write(data)
}

func (e *Encoder) write(p []byte) error {
	_, err := e.w.Write(p)
	return errors.Wrap(err, "mpack: write failed")
}

func (e *Encoder) writeByte(b byte) error {
	e.scratch[0] = b
	return e.write(e.scratch[:1])
}

func (e *Encoder) write2(b0, b1 byte) error {
	e.scratch[0], e.scratch[1] = b0, b1
	return e.write(e.scratch[:2])
}

func (e *Encoder) writeUint16(tag byte, v uint16) error {
	e.scratch[0] = tag
	binary.BigEndian.PutUint16(e.scratch[1:3], v)
	return e.write(e.scratch[:3])
}

func (e *Encoder) writeUint32(tag byte, v uint32) error {
	e.scratch[0] = tag
	binary.BigEndian.PutUint32(e.scratch[1:5], v)
	return e.write(e.scratch[:5])
}

func (e *Encoder) writeUint64(tag byte, v uint64) error {
	e.scratch[0] = tag
	binary.BigEndian.PutUint64(e.scratch[1:9], v)
	return e.write(e.scratch[:9])
}
