// SPDX-FileCopyrightText: 2021 The mpack Authors
//
// SPDX-License-Identifier: MIT

package ext

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/pkg/errors"

	"github.com/ssbc/mpack"
)

// RegisterComplex routes complex128 values through ext type 0x50. The
// payload is real and imaginary part as two big-endian 32-bit floats, so
// parts outside float32 precision are rounded.
func RegisterComplex(reg *mpack.Registry) error {
	return reg.RegisterOverride(ComplexType, reflect.TypeOf(complex128(0)), complexHandler{})
}

type complexHandler struct{}

func (complexHandler) PackExt(v interface{}, _ *mpack.EncodeOptions) ([]byte, error) {
	c, ok := v.(complex128)
	if !ok {
		return nil, errors.Errorf("ext: expected complex128, got %T", v)
	}
	var b [8]byte
	binary.BigEndian.PutUint32(b[:4], math.Float32bits(float32(real(c))))
	binary.BigEndian.PutUint32(b[4:], math.Float32bits(float32(imag(c))))
	return b[:], nil
}

func (complexHandler) UnpackExt(data []byte, _ *mpack.DecodeOptions) (interface{}, error) {
	if len(data) != 8 {
		return nil, errors.Errorf("ext: complex payload must be 8 bytes, got %d", len(data))
	}
	re := math.Float32frombits(binary.BigEndian.Uint32(data[:4]))
	im := math.Float32frombits(binary.BigEndian.Uint32(data[4:]))
	return complex(float64(re), float64(im)), nil
}
