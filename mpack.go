// SPDX-FileCopyrightText: 2021 The mpack Authors
//
// SPDX-License-Identifier: MIT

// Package mpack implements a compact subset of the MessagePack binary
// serialization format: the current-spec binary, UTF-8 string and
// application extension types, without the timestamp extension and without
// the legacy raw compatibility mode.
//
// Values are encoded as a one-byte tag, an optional big-endian length field
// and an optional payload. The decoder exists in two forms that share one
// grammar: a buffered form over an io.Reader, and a streaming form over a
// ByteSource whose reads may block until data arrives. The streaming form
// can also be driven as a luigi.Source, yielding one decoded value per
// Next call.
//
// Types outside the native set are handled through an extension Registry;
// see the ext subpackage for handlers covering complex numbers, sets,
// fixed sequences, byte-arrays and ordered maps.
package mpack

import "reflect"

// Register adds a custom-type handler to the Default registry.
func Register(code int, typ reflect.Type, h ExtHandler) error {
	return Default.Register(code, typ, h)
}

// RegisterOverride adds a native-type override handler to the Default
// registry.
func RegisterOverride(code int, typ reflect.Type, h ExtHandler) error {
	return Default.RegisterOverride(code, typ, h)
}

// Deregister removes the handler for code from the Default registry.
func Deregister(code int) {
	Default.Deregister(code)
}
