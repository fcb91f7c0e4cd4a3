// SPDX-FileCopyrightText: 2021 The mpack Authors
//
// SPDX-License-Identifier: MIT

package mpack

import "reflect"

// Ext is a raw extension value: an application type code in [-128,127]
// paired with its undecoded payload.
type Ext struct {
	Type int8
	Data []byte
}

var ifaceType = reflect.TypeOf((*interface{})(nil)).Elem()

// AsFixedSequence converts a decoded array into an immutable fixed
// sequence, a runtime-constructed [N]interface{} value. Nested slices are
// converted recursively. Fixed sequences are comparable and therefore
// usable as map keys, as long as their elements are.
func AsFixedSequence(xs []interface{}) interface{} {
	arr := reflect.New(reflect.ArrayOf(len(xs), ifaceType)).Elem()
	for i, x := range xs {
		if nested, ok := x.([]interface{}); ok {
			x = AsFixedSequence(nested)
		}
		if x != nil {
			arr.Index(i).Set(reflect.ValueOf(x))
		}
	}
	return arr.Interface()
}

// Hashable reports whether v can be used as a map key without panicking on
// comparison.
func Hashable(v interface{}) bool {
	return hashableValue(reflect.ValueOf(v))
}

func hashableValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Invalid:
		return true // the nil interface
	case reflect.Slice, reflect.Map, reflect.Func:
		return false
	case reflect.Interface:
		return hashableValue(v.Elem())
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if !hashableValue(v.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Struct:
		if !v.Type().Comparable() {
			return false
		}
		for i := 0; i < v.NumField(); i++ {
			if !hashableValue(v.Field(i)) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// normalizeKey prepares a decoded value for use as a map key: arrays become
// fixed sequences, anything still unhashable is rejected.
func normalizeKey(k interface{}) (interface{}, error) {
	if xs, ok := k.([]interface{}); ok {
		k = AsFixedSequence(xs)
	}
	if !Hashable(k) {
		return nil, UnhashableKeyError{Key: k}
	}
	return k, nil
}
