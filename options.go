// SPDX-FileCopyrightText: 2021 The mpack Authors
//
// SPDX-License-Identifier: MIT

package mpack

import (
	"strconv"
	"strings"

	"github.com/ssbc/go-luigi"
)

// FloatPrecision selects the wire width of encoded floating point values.
type FloatPrecision int

const (
	// PlatformFloat uses the precision detected for the platform's default
	// float type.
	PlatformFloat FloatPrecision = iota

	// SingleFloat forces 32-bit IEEE-754 encoding.
	SingleFloat

	// DoubleFloat forces 64-bit IEEE-754 encoding.
	DoubleFloat
)

// platformFloat is the precision used when ForceFloatPrecision is left at
// PlatformFloat. A default float carrying at least 13 significant decimal
// digits counts as double precision.
var platformFloat = detectFloatPrecision()

func detectFloatPrecision() FloatPrecision {
	probe := strconv.FormatFloat(1.0/3.0, 'f', -1, 64)
	if strings.Count(probe, "3") >= 13 {
		return DoubleFloat
	}
	return SingleFloat
}

// EncodeOptions configures a single encode call. The zero value is a valid
// default configuration.
type EncodeOptions struct {
	// ForceFloatPrecision overrides the platform-detected float width for
	// float64 values.
	ForceFloatPrecision FloatPrecision

	// Registry resolves extension types. Nil means Default.
	Registry *Registry
}

// UnpackFunc turns a raw extension payload into an application value.
type UnpackFunc func(data []byte, opts *DecodeOptions) (interface{}, error)

// DecodeOptions configures a single decode call. The zero value is a valid
// default configuration.
type DecodeOptions struct {
	// UseOrderedMap decodes maps into *orderedmap.OrderedMap, preserving
	// entry order, instead of plain Go maps.
	UseOrderedMap bool

	// UseFixedSequence decodes arrays into fixed [N]interface{} sequences
	// instead of growable slices.
	UseFixedSequence bool

	// AllowInvalidUTF8 returns raw bytes for string payloads that are not
	// valid UTF-8, instead of failing with InvalidStringError.
	AllowInvalidUTF8 bool

	// ExtOverrides maps extension codes to unpack functions consulted
	// before the registry, scoped to this call.
	ExtOverrides map[int8]UnpackFunc

	// Observer, if set, is poured with every raw chunk consumed during a
	// streaming decode, and with a zero-length chunk after each completed
	// top-level value. Ignored by the buffered driver.
	Observer luigi.Sink

	// Registry resolves extension types. Nil means Default.
	Registry *Registry
}

func (o *DecodeOptions) registry() *Registry {
	if o != nil && o.Registry != nil {
		return o.Registry
	}
	return Default
}

func (o *EncodeOptions) registry() *Registry {
	if o != nil && o.Registry != nil {
		return o.Registry
	}
	return Default
}
