// SPDX-FileCopyrightText: 2021 The mpack Authors
//
// SPDX-License-Identifier: MIT

package ext

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/ssbc/mpack"
)

// Set is an unordered collection of unique values. Elements must be usable
// as map keys.
type Set map[interface{}]struct{}

// NewSet returns a set holding the given values.
func NewSet(vals ...interface{}) Set {
	s := make(Set, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// RegisterSet routes Set values through ext type 0x51. The payload is a
// nested encoding of the elements as an array, in no particular order.
func RegisterSet(reg *mpack.Registry) error {
	return reg.RegisterOverride(SetType, reflect.TypeOf(Set(nil)), setHandler{})
}

type setHandler struct{}

func (setHandler) PackExt(v interface{}, opts *mpack.EncodeOptions) ([]byte, error) {
	s, ok := v.(Set)
	if !ok {
		return nil, errors.Errorf("ext: expected Set, got %T", v)
	}
	elems := make([]interface{}, 0, len(s))
	for e := range s {
		elems = append(elems, e)
	}
	return mpack.Marshal(elems, opts)
}

func (setHandler) UnpackExt(data []byte, opts *mpack.DecodeOptions) (interface{}, error) {
	v, err := mpack.Unmarshal(data, opts)
	if err != nil {
		return nil, errors.Wrap(err, "ext: decoding set payload")
	}
	elems, ok := payloadSlice(v)
	if !ok {
		return nil, errors.Errorf("ext: set payload is not an array but %T", v)
	}
	s := make(Set, len(elems))
	for _, e := range elems {
		if nested, ok := e.([]interface{}); ok {
			e = mpack.AsFixedSequence(nested)
		}
		if !mpack.Hashable(e) {
			return nil, errors.Errorf("ext: unhashable set element %T", e)
		}
		s[e] = struct{}{}
	}
	return s, nil
}
