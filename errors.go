// SPDX-FileCopyrightText: 2021 The mpack Authors
//
// SPDX-License-Identifier: MIT

package mpack

import (
	"fmt"

	"github.com/pkg/errors"
)

// UnsupportedTypeError is returned by the encoder when a value has neither a
// native wire form nor a registered extension handler, and by the decoder
// when an extension code resolves to no handler.
type UnsupportedTypeError struct {
	Type string
}

func (e UnsupportedTypeError) Error() string {
	return "mpack: unsupported type: " + e.Type
}

// InsufficientDataError is returned when the byte source is exhausted before
// a required byte count was met.
type InsufficientDataError struct {
	Want, Got int
}

func (e InsufficientDataError) Error() string {
	return fmt.Sprintf("mpack: insufficient data: wanted %d bytes, got %d", e.Want, e.Got)
}

// InvalidStringError is returned when a string payload is not valid UTF-8
// and no fallback is configured.
type InvalidStringError struct{}

func (InvalidStringError) Error() string {
	return "mpack: string payload is not valid utf-8"
}

// ReservedCodeError is returned when the reserved tag byte is encountered.
type ReservedCodeError struct {
	Code byte
}

func (e ReservedCodeError) Error() string {
	return fmt.Sprintf("mpack: got reserved code: 0x%02x", e.Code)
}

// UnhashableKeyError is returned when a decoded map key is not usable as a
// lookup key, even after array normalization.
type UnhashableKeyError struct {
	Key interface{}
}

func (e UnhashableKeyError) Error() string {
	return fmt.Sprintf("mpack: unhashable map key: %v (%T)", e.Key, e.Key)
}

// DuplicateKeyError is returned when two entries of one map decode to equal
// keys.
type DuplicateKeyError struct {
	Key interface{}
}

func (e DuplicateKeyError) Error() string {
	return fmt.Sprintf("mpack: duplicate map key: %v (%T)", e.Key, e.Key)
}

// IsUnsupportedType returns whether err is an UnsupportedTypeError.
func IsUnsupportedType(err error) bool {
	_, ok := errors.Cause(err).(UnsupportedTypeError)
	return ok
}

// IsInsufficientData returns whether err is an InsufficientDataError.
func IsInsufficientData(err error) bool {
	_, ok := errors.Cause(err).(InsufficientDataError)
	return ok
}

// IsInvalidString returns whether err is an InvalidStringError.
func IsInvalidString(err error) bool {
	_, ok := errors.Cause(err).(InvalidStringError)
	return ok
}

// IsReservedCode returns whether err is a ReservedCodeError.
func IsReservedCode(err error) bool {
	_, ok := errors.Cause(err).(ReservedCodeError)
	return ok
}

// IsUnhashableKey returns whether err is an UnhashableKeyError.
func IsUnhashableKey(err error) bool {
	_, ok := errors.Cause(err).(UnhashableKeyError)
	return ok
}

// IsDuplicateKey returns whether err is a DuplicateKeyError.
func IsDuplicateKey(err error) bool {
	_, ok := errors.Cause(err).(DuplicateKeyError)
	return ok
}
