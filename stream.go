// SPDX-FileCopyrightText: 2021 The mpack Authors
//
// SPDX-License-Identifier: MIT

package mpack

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/ssbc/go-luigi"
)

// ByteSource is the transport side of the streaming driver. ReadExactly
// returns exactly n bytes, blocking the caller until they arrived, the
// context was canceled, or the source can never supply them (in which case
// it fails with InsufficientDataError).
type ByteSource interface {
	ReadExactly(ctx context.Context, n int) ([]byte, error)
}

// StreamDecoder is the streaming driver. It applies the same grammar as the
// buffered Decoder, but every byte acquisition goes through a ByteSource
// and may block until data arrives.
type StreamDecoder struct {
	d    decoder
	feed *streamFeed
}

// NewStreamDecoder returns a streaming decoder over src. A nil opts means
// defaults.
func NewStreamDecoder(src ByteSource, opts *DecodeOptions) *StreamDecoder {
	if opts == nil {
		opts = &DecodeOptions{}
	}
	f := &streamFeed{src: src, observer: opts.Observer}
	return &StreamDecoder{d: decoder{src: f, opts: opts}, feed: f}
}

// Decode reads one top-level value, blocking as needed. If an observer is
// configured it is poured with a zero-length chunk once the value is
// complete.
func (sd *StreamDecoder) Decode(ctx context.Context) (interface{}, error) {
	v, err := sd.d.decode(ctx)
	if err != nil {
		return nil, err
	}
	if err := sd.endOfObject(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// Source exposes the decoder as an unbounded lazy sequence: each Next
// performs exactly one top-level decode. The sequence ends with luigi.EOS
// only when the source reports end-of-data between values; running dry
// mid-value stays an InsufficientDataError.
func (sd *StreamDecoder) Source() luigi.Source {
	return &streamSource{sd: sd}
}

// DecodeStream decodes a single value from src.
func DecodeStream(ctx context.Context, src ByteSource, opts *DecodeOptions) (interface{}, error) {
	return NewStreamDecoder(src, opts).Decode(ctx)
}

func (sd *StreamDecoder) endOfObject(ctx context.Context) error {
	if sd.feed.observer == nil {
		return nil
	}
	err := sd.feed.observer.Pour(ctx, []byte{})
	return errors.Wrap(err, "mpack: observer rejected end-of-object marker")
}

// streamFeed tees every raw read into the observer and counts consumed
// bytes, so the sequence driver can tell a clean end of stream from a
// truncated value.
type streamFeed struct {
	src      ByteSource
	observer luigi.Sink
	consumed int
}

func (f *streamFeed) readExactly(ctx context.Context, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	b, err := f.src.ReadExactly(ctx, n)
	if err != nil {
		return nil, err
	}
	f.consumed += len(b)
	if f.observer != nil {
		if err := f.observer.Pour(ctx, b); err != nil {
			return nil, errors.Wrap(err, "mpack: observer rejected chunk")
		}
	}
	return b, nil
}

type streamSource struct {
	sd *StreamDecoder
}

func (s *streamSource) Next(ctx context.Context) (interface{}, error) {
	start := s.sd.feed.consumed
	v, err := s.sd.d.decode(ctx)
	if err != nil {
		if IsInsufficientData(err) && s.sd.feed.consumed == start {
			return nil, luigi.EOS{}
		}
		return nil, err
	}
	if err := s.sd.endOfObject(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// NewReaderSource adapts a plain io.Reader into a ByteSource. Reads block
// in the reader; the context is only checked between read calls.
func NewReaderSource(r io.Reader) ByteSource {
	return &readerSource{r: r}
}

type readerSource struct {
	r io.Reader
}

func (s *readerSource) ReadExactly(ctx context.Context, n int) ([]byte, error) {
	buf := make([]byte, n)
	var got int
	for got < n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := s.r.Read(buf[got:])
		got += m
		if got == n {
			break
		}
		if err != nil || m == 0 {
			return nil, InsufficientDataError{Want: n, Got: got}
		}
	}
	return buf, nil
}

// ChanSource is a ByteSource fed from a channel of chunks of arbitrary
// size. A ReadExactly call suspends on the channel until enough bytes
// accumulated; closing the channel signals permanent end-of-data.
type ChanSource struct {
	ch  <-chan []byte
	rem []byte
}

// NewChanSource returns a source draining ch.
func NewChanSource(ch <-chan []byte) *ChanSource {
	return &ChanSource{ch: ch}
}

func (s *ChanSource) ReadExactly(ctx context.Context, n int) ([]byte, error) {
	for len(s.rem) < n {
		select {
		case chunk, ok := <-s.ch:
			if !ok {
				return nil, InsufficientDataError{Want: n, Got: len(s.rem)}
			}
			s.rem = append(s.rem, chunk...)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	out := s.rem[:n:n]
	s.rem = s.rem[n:]
	return out, nil
}
