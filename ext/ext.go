// SPDX-FileCopyrightText: 2021 The mpack Authors
//
// SPDX-License-Identifier: MIT

// Package ext extends the codec with handlers for value shapes outside the
// native set: complex numbers, sets, fixed sequences, byte-arrays and
// ordered maps. Handlers are registered explicitly, per registry, so tests
// can use throwaway registries and deregister cleanly.
package ext

import (
	"reflect"

	"github.com/ssbc/mpack"
)

// Extension type codes. The range starting at 0x50 is arbitrary; any code
// in -128..127 works.
const (
	ComplexType    = 0x50
	SetType        = 0x51
	TupleType      = 0x52
	ByteArrayType  = 0x53
	OrderedMapType = 0x54
)

// RegisterAll adds every handler in this package to reg.
func RegisterAll(reg *mpack.Registry) error {
	for _, register := range []func(*mpack.Registry) error{
		RegisterComplex,
		RegisterSet,
		RegisterTuple,
		RegisterByteArray,
		RegisterOrderedMap,
	} {
		if err := register(reg); err != nil {
			return err
		}
	}
	return nil
}

// DeregisterAll removes every handler in this package from reg.
func DeregisterAll(reg *mpack.Registry) {
	for _, code := range []int{ComplexType, SetType, TupleType, ByteArrayType, OrderedMapType} {
		reg.Deregister(code)
	}
}

// payloadSlice unwraps a decoded payload into its elements, accepting both
// the growable and the fixed-sequence array forms.
func payloadSlice(v interface{}) ([]interface{}, bool) {
	if xs, ok := v.([]interface{}); ok {
		return xs, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Array {
		return nil, false
	}
	xs := make([]interface{}, rv.Len())
	for i := range xs {
		xs[i] = rv.Index(i).Interface()
	}
	return xs, true
}
