// SPDX-FileCopyrightText: 2021 The mpack Authors
//
// SPDX-License-Identifier: MIT

package ext

import (
	"reflect"

	"github.com/elliotchance/orderedmap/v3"
	"github.com/pkg/errors"

	"github.com/ssbc/mpack"
)

// RegisterOrderedMap routes *orderedmap.OrderedMap values through ext type
// 0x54, so a map's insertion order survives even when the decode side does
// not pass UseOrderedMap. The payload is a flat array alternating keys and
// values; packing the map itself would recurse into this handler.
func RegisterOrderedMap(reg *mpack.Registry) error {
	typ := reflect.TypeOf((*orderedmap.OrderedMap[interface{}, interface{}])(nil))
	return reg.RegisterOverride(OrderedMapType, typ, orderedMapHandler{})
}

type orderedMapHandler struct{}

func (orderedMapHandler) PackExt(v interface{}, opts *mpack.EncodeOptions) ([]byte, error) {
	m, ok := v.(*orderedmap.OrderedMap[interface{}, interface{}])
	if !ok {
		return nil, errors.Errorf("ext: expected *orderedmap.OrderedMap, got %T", v)
	}
	pairs := make([]interface{}, 0, 2*m.Len())
	for el := m.Front(); el != nil; el = el.Next() {
		pairs = append(pairs, el.Key, el.Value)
	}
	return mpack.Marshal(pairs, opts)
}

func (orderedMapHandler) UnpackExt(data []byte, opts *mpack.DecodeOptions) (interface{}, error) {
	v, err := mpack.Unmarshal(data, opts)
	if err != nil {
		return nil, errors.Wrap(err, "ext: decoding ordered-map payload")
	}
	pairs, ok := payloadSlice(v)
	if !ok {
		return nil, errors.Errorf("ext: ordered-map payload is not an array but %T", v)
	}
	if len(pairs)%2 != 0 {
		return nil, errors.Errorf("ext: ordered-map payload has odd length %d", len(pairs))
	}
	m := orderedmap.NewOrderedMapWithCapacity[interface{}, interface{}](len(pairs) / 2)
	for i := 0; i < len(pairs); i += 2 {
		k := pairs[i]
		if nested, ok := k.([]interface{}); ok {
			k = mpack.AsFixedSequence(nested)
		}
		if !mpack.Hashable(k) {
			return nil, errors.Errorf("ext: unhashable ordered-map key %T", k)
		}
		m.Set(k, pairs[i+1])
	}
	return m, nil
}
