// SPDX-FileCopyrightText: 2021 The mpack Authors
//
// SPDX-License-Identifier: MIT

package mpack

import (
	"math"
	"reflect"

	"github.com/pkg/errors"
)

// ExtHandler packs and unpacks the payload of one extension type.
type ExtHandler interface {
	// PackExt serializes v into the raw payload of an extension value.
	PackExt(v interface{}, opts *EncodeOptions) ([]byte, error)

	// UnpackExt turns a raw extension payload back into an application
	// value.
	UnpackExt(data []byte, opts *DecodeOptions) (interface{}, error)
}

type registration struct {
	code    int8
	typ     reflect.Type // nil for kind registrations
	kind    reflect.Kind
	byKind  bool
	handler ExtHandler

	// override registrations are consulted before the native encoder
	// cases, custom ones after.
	override bool
}

// Registry associates extension type codes with handlers, and native Go
// types with the handler that packs them.
//
// A Registry is not safe for concurrent mutation; registration is expected
// to happen during initialization, before encode or decode calls run.
// Callers registering dynamically under concurrency must serialize
// externally.
type Registry struct {
	byCode map[int8]*registration
	byType map[reflect.Type]*registration
	order  []*registration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byCode: make(map[int8]*registration),
		byType: make(map[reflect.Type]*registration),
	}
}

// Default is the process-wide registry consulted when options carry none.
var Default = NewRegistry()

// Register adds a handler for a custom type, consulted after the native
// encoder cases. On encode, a value resolves to its handler by exact type
// first, then by a scan over registered interface types in registration
// order; unpacking always yields whatever the handler constructs, never the
// original concrete type.
func (r *Registry) Register(code int, typ reflect.Type, h ExtHandler) error {
	return r.add(&registration{typ: typ, handler: h}, code)
}

// RegisterOverride adds a handler for typ that takes precedence over the
// native encoder cases, so a type that would otherwise match a native form
// is packed as an extension instead.
func (r *Registry) RegisterOverride(code int, typ reflect.Type, h ExtHandler) error {
	return r.add(&registration{typ: typ, handler: h, override: true}, code)
}

// RegisterKindOverride is RegisterOverride keyed by reflect.Kind instead of
// a single type. It serves type families that cannot share one reflect.Type,
// such as the [N]interface{} fixed sequences, which have a distinct type per
// length.
func (r *Registry) RegisterKindOverride(code int, kind reflect.Kind, h ExtHandler) error {
	return r.add(&registration{kind: kind, byKind: true, handler: h, override: true}, code)
}

func (r *Registry) add(reg *registration, code int) error {
	if code < math.MinInt8 || code > math.MaxInt8 {
		return errors.Errorf("mpack: ext type %d out of range -128 to 127", code)
	}
	c := int8(code)
	if prev, ok := r.byCode[c]; ok {
		return errors.Errorf("mpack: ext type %d already registered with %s", code, prev.describe())
	}
	if reg.typ != nil {
		if prev, ok := r.byType[reg.typ]; ok {
			return errors.Errorf("mpack: type %s already registered with ext type %d", reg.typ, prev.code)
		}
	}
	reg.code = c
	r.byCode[c] = reg
	if reg.typ != nil {
		r.byType[reg.typ] = reg
	}
	r.order = append(r.order, reg)
	return nil
}

func (reg *registration) describe() string {
	if reg.byKind {
		return "kind " + reg.kind.String()
	}
	return "type " + reg.typ.String()
}

// Deregister removes the registration for code, if any. Tests use this to
// avoid leaking registrations across test boundaries.
func (r *Registry) Deregister(code int) {
	if code < math.MinInt8 || code > math.MaxInt8 {
		return
	}
	reg, ok := r.byCode[int8(code)]
	if !ok {
		return
	}
	delete(r.byCode, reg.code)
	if reg.typ != nil {
		delete(r.byType, reg.typ)
	}
	for i, o := range r.order {
		if o == reg {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// forCode returns the handler registered under code.
func (r *Registry) forCode(code int8) (ExtHandler, bool) {
	reg, ok := r.byCode[code]
	if !ok {
		return nil, false
	}
	return reg.handler, true
}

// forType resolves the handler packing values of type t: exact type first,
// then a linear scan over interface and kind registrations in registration
// order.
func (r *Registry) forType(t reflect.Type, override bool) (*registration, bool) {
	if reg, ok := r.byType[t]; ok && reg.override == override {
		return reg, true
	}
	for _, reg := range r.order {
		if reg.override != override {
			continue
		}
		if reg.byKind && reg.kind == t.Kind() {
			return reg, true
		}
		if reg.typ != nil && reg.typ.Kind() == reflect.Interface && t.Implements(reg.typ) {
			return reg, true
		}
	}
	return nil, false
}
