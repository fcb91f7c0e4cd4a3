// SPDX-FileCopyrightText: 2021 The mpack Authors
//
// SPDX-License-Identifier: MIT

package mpack

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/ssbc/go-luigi"
	"github.com/stretchr/testify/require"
)

// oneByteReader delivers at most one byte per Read call.
type oneByteReader struct {
	r io.Reader
}

func (o oneByteReader) Read(p []byte) (int, error) {
	if len(p) > 1 {
		p = p[:1]
	}
	return o.r.Read(p)
}

// feedChunks pours data into a fresh ChanSource in chunks of the given
// size, closing the channel when done.
func feedChunks(data []byte, chunkSize int) *ChanSource {
	ch := make(chan []byte)
	go func() {
		defer close(ch)
		for len(data) > 0 {
			n := chunkSize
			if n > len(data) {
				n = len(data)
			}
			ch <- data[:n]
			data = data[n:]
		}
	}()
	return NewChanSource(ch)
}

func TestStreamingEquivalence(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	for _, v := range roundtripValues() {
		data, err := Marshal(v, nil)
		r.NoError(err)

		buffered, err := Unmarshal(data, nil)
		r.NoError(err)

		streamed, err := DecodeStream(ctx, feedChunks(data, 1), nil)
		r.NoError(err, "streaming decode of %#v", v)
		r.Equal(buffered, streamed, "streaming decode of %#v", v)
	}
}

func TestStreamingEquivalentErrors(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	tcs := []struct {
		in    []byte
		check func(error) bool
	}{
		{[]byte{0xc1}, IsReservedCode},
		{[]byte{0xcd, 0x01}, IsInsufficientData},
		{[]byte{0xa1, 0xff}, IsInvalidString},
		{[]byte{0x82, 0x01, 0xc3, 0x01, 0xc2}, IsDuplicateKey},
		{[]byte{0x81, 0x91, 0x80, 0xc0}, IsUnhashableKey},
	}

	for _, tc := range tcs {
		_, berr := Unmarshal(tc.in, nil)
		r.Error(berr, "buffered decode of % x", tc.in)
		r.True(tc.check(berr), "buffered decode of % x: %v", tc.in, berr)

		_, serr := DecodeStream(ctx, feedChunks(tc.in, 1), nil)
		r.Error(serr, "streaming decode of % x", tc.in)
		r.True(tc.check(serr), "streaming decode of % x: %v", tc.in, serr)
	}
}

func TestStreamingOneByteReaderSource(t *testing.T) {
	r := require.New(t)

	v := map[interface{}]interface{}{"k": []interface{}{int64(1), "two"}}
	data, err := Marshal(v, nil)
	r.NoError(err)

	src := NewReaderSource(oneByteReader{r: bytes.NewReader(data)})
	got, err := DecodeStream(context.Background(), src, nil)
	r.NoError(err)
	r.Equal(v, got)
}

func TestStreamSourceSequence(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	values := []interface{}{int64(1), "two", []interface{}{true, nil}}
	var wire []byte
	for _, v := range values {
		data, err := Marshal(v, nil)
		r.NoError(err)
		wire = append(wire, data...)
	}

	src := NewStreamDecoder(feedChunks(wire, 2), nil).Source()
	for _, want := range values {
		got, err := src.Next(ctx)
		r.NoError(err)
		r.Equal(want, got)
	}

	_, err := src.Next(ctx)
	r.True(luigi.IsEOS(err), "expected end-of-stream, got %v", err)
}

func TestStreamSourceTruncatedMidObject(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	data, err := Marshal([]interface{}{int64(1), int64(2), int64(3)}, nil)
	r.NoError(err)

	// Cut inside the second top-level object.
	wire := append(data, 0xcd, 0x01)

	src := NewStreamDecoder(feedChunks(wire, 1), nil).Source()
	_, err = src.Next(ctx)
	r.NoError(err)

	_, err = src.Next(ctx)
	r.Error(err)
	r.False(luigi.IsEOS(err), "mid-object truncation must not read as end-of-stream")
	r.True(IsInsufficientData(err))
}

func TestStreamObserverCompleteness(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	v := map[interface{}]interface{}{"key": []interface{}{int64(1), []byte{2, 3}}}
	data, err := Marshal(v, nil)
	r.NoError(err)

	var seen []byte
	var markers int
	observer := luigi.FuncSink(func(_ context.Context, chunk interface{}, err error) error {
		if err != nil {
			return err
		}
		b := chunk.([]byte)
		if len(b) == 0 {
			markers++
			return nil
		}
		seen = append(seen, b...)
		return nil
	})

	got, err := DecodeStream(ctx, feedChunks(data, 3), &DecodeOptions{Observer: observer})
	r.NoError(err)
	r.Equal(v, got)
	r.Equal(data, seen, "observer chunks must reassemble the wire image")
	r.Equal(1, markers, "exactly one end-of-object marker")
}

func TestStreamObserverPerObjectMarkers(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	var wire []byte
	for _, v := range []interface{}{int64(1), int64(2)} {
		data, err := Marshal(v, nil)
		r.NoError(err)
		wire = append(wire, data...)
	}

	var markers int
	observer := luigi.FuncSink(func(_ context.Context, chunk interface{}, err error) error {
		if err != nil {
			return err
		}
		if len(chunk.([]byte)) == 0 {
			markers++
		}
		return nil
	})

	src := NewStreamDecoder(feedChunks(wire, 1), &DecodeOptions{Observer: observer}).Source()
	_, err := src.Next(ctx)
	r.NoError(err)
	r.Equal(1, markers)

	_, err = src.Next(ctx)
	r.NoError(err)
	r.Equal(2, markers)
}

func TestStreamDecodeSuspendsUntilDataArrives(t *testing.T) {
	r := require.New(t)

	data, err := Marshal("hello", nil)
	r.NoError(err)

	ch := make(chan []byte)
	src := NewChanSource(ch)

	done := make(chan struct{})
	var got interface{}
	var derr error
	go func() {
		defer close(done)
		got, derr = DecodeStream(context.Background(), src, nil)
	}()

	// Trickle the bytes in; the decode must stay suspended in between.
	for _, b := range data {
		select {
		case <-done:
			t.Fatal("decode finished before all bytes were delivered")
		case ch <- []byte{b}:
		}
	}
	close(ch)

	<-done
	r.NoError(derr)
	r.Equal("hello", got)
}

func TestStreamDecodeCancellation(t *testing.T) {
	r := require.New(t)

	ch := make(chan []byte) // never fed
	src := NewChanSource(ch)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(time.Millisecond)
		cancel()
	}()

	_, err := DecodeStream(ctx, src, nil)
	r.Error(err)
	r.Equal(context.Canceled, err)
}
