// SPDX-FileCopyrightText: 2021 The mpack Authors
//
// SPDX-License-Identifier: MIT

package mpack

import "io"

// Codec bundles the buffered half of the package behind one value, for
// callers that treat their serialization format as pluggable. The options
// apply to every call made through the codec.
type Codec struct {
	Encode *EncodeOptions
	Decode *DecodeOptions
}

// NewCodec returns a codec using the given options. Either may be nil.
func NewCodec(enc *EncodeOptions, dec *DecodeOptions) Codec {
	return Codec{Encode: enc, Decode: dec}
}

// Marshal encodes a single value and returns the serialized byte slice.
func (c Codec) Marshal(v interface{}) ([]byte, error) {
	return Marshal(v, c.Encode)
}

// Unmarshal decodes and returns the first value stored in data.
func (c Codec) Unmarshal(data []byte) (interface{}, error) {
	return Unmarshal(data, c.Decode)
}

// NewEncoder returns an encoder writing to w with the codec's options.
func (c Codec) NewEncoder(w io.Writer) *Encoder {
	return NewEncoder(w, c.Encode)
}

// NewDecoder returns a buffered decoder reading from r with the codec's
// options.
func (c Codec) NewDecoder(r io.Reader) *Decoder {
	return NewDecoder(r, c.Decode)
}
