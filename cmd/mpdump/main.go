// SPDX-FileCopyrightText: 2021 The mpack Authors
//
// SPDX-License-Identifier: MIT

// mpdump reads a stream of MessagePack values from a file (or stdin) and
// prints each decoded value, one per line.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/ssbc/go-luigi"
	"go.mindeco.de/logging"

	"github.com/ssbc/mpack"
	"github.com/ssbc/mpack/ext"
)

var check = logging.CheckFatal

func main() {
	logging.SetupLogging(nil)
	log := logging.Logger("mpdump")

	in := os.Stdin
	if len(os.Args) > 1 {
		f, err := os.Open(os.Args[1])
		check(errors.Wrap(err, "error opening input file"))
		defer f.Close()
		in = f
	}

	check(ext.RegisterAll(mpack.Default))

	src := mpack.NewStreamDecoder(mpack.NewReaderSource(in), nil).Source()

	ctx := context.Background()
	var n int
	for {
		v, err := src.Next(ctx)
		if luigi.IsEOS(err) {
			break
		}
		check(errors.Wrap(err, "error decoding value"))
		fmt.Printf("%d: %#v\n", n, v)
		n++
	}
	log.Log("event", "done", "values", n)
}
