// SPDX-FileCopyrightText: 2021 The mpack Authors
//
// SPDX-License-Identifier: MIT

package ext

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/ssbc/mpack"
)

// RegisterTuple routes fixed sequences ([N]interface{} values, as produced
// by mpack.AsFixedSequence and UseFixedSequence decoding) through ext type
// 0x52 instead of the native array form. Since each sequence length is a
// distinct type, the registration is by kind.
func RegisterTuple(reg *mpack.Registry) error {
	return reg.RegisterKindOverride(TupleType, reflect.Array, tupleHandler{})
}

type tupleHandler struct{}

func (tupleHandler) PackExt(v interface{}, opts *mpack.EncodeOptions) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Array {
		return nil, errors.Errorf("ext: expected fixed sequence, got %T", v)
	}
	// Pack the elements as a growable array; packing the sequence itself
	// would recurse right back into this handler.
	xs := make([]interface{}, rv.Len())
	for i := range xs {
		xs[i] = rv.Index(i).Interface()
	}
	return mpack.Marshal(xs, opts)
}

func (tupleHandler) UnpackExt(data []byte, opts *mpack.DecodeOptions) (interface{}, error) {
	v, err := mpack.Unmarshal(data, opts)
	if err != nil {
		return nil, errors.Wrap(err, "ext: decoding tuple payload")
	}
	if reflect.ValueOf(v).Kind() == reflect.Array {
		return v, nil // UseFixedSequence already produced one
	}
	xs, ok := v.([]interface{})
	if !ok {
		return nil, errors.Errorf("ext: tuple payload is not an array but %T", v)
	}
	return mpack.AsFixedSequence(xs), nil
}
