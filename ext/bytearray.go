// SPDX-FileCopyrightText: 2021 The mpack Authors
//
// SPDX-License-Identifier: MIT

package ext

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/ssbc/mpack"
)

// ByteArray marks a byte buffer that should survive a round trip as a
// ByteArray instead of collapsing into the native binary form.
type ByteArray []byte

// RegisterByteArray routes ByteArray values through ext type 0x53. The
// payload is a nested encoding of the bytes as native binary.
func RegisterByteArray(reg *mpack.Registry) error {
	return reg.RegisterOverride(ByteArrayType, reflect.TypeOf(ByteArray(nil)), byteArrayHandler{})
}

type byteArrayHandler struct{}

func (byteArrayHandler) PackExt(v interface{}, opts *mpack.EncodeOptions) ([]byte, error) {
	ba, ok := v.(ByteArray)
	if !ok {
		return nil, errors.Errorf("ext: expected ByteArray, got %T", v)
	}
	return mpack.Marshal([]byte(ba), opts)
}

func (byteArrayHandler) UnpackExt(data []byte, opts *mpack.DecodeOptions) (interface{}, error) {
	v, err := mpack.Unmarshal(data, opts)
	if err != nil {
		return nil, errors.Wrap(err, "ext: decoding byte-array payload")
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, errors.Errorf("ext: byte-array payload is not binary but %T", v)
	}
	return ByteArray(b), nil
}
