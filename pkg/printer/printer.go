// Copyright 2021 The git-bv Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package printer defines utilities to display git-bv CLI output.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Printer abstracts how the CLI displays output so the UX can evolve
// without touching command logic.
type Printer interface {
	Printf(format string, args ...interface{})
	OutStream() io.Writer
	ErrStream() io.Writer
}

// New returns an instance of Printer. Nil streams default to the
// process streams.
func New(outStream, errStream io.Writer) Printer {
	if outStream == nil {
		outStream = os.Stdout
	}
	if errStream == nil {
		errStream = os.Stderr
	}
	return &printer{
		outStream: outStream,
		errStream: errStream,
	}
}

// printer implements the default Printer used in the git-bv codebase.
type printer struct {
	outStream io.Writer
	errStream io.Writer
}

// The key type is unexported to prevent collisions with context keys defined
// in other packages.
type contextKey int

// printerKey is the context key for the printer. Its value of zero is
// arbitrary.
const printerKey contextKey = 0

// OutStream returns the stdout stream, for command output only.
func (pr *printer) OutStream() io.Writer {
	return pr.outStream
}

// ErrStream returns the stderr stream, for progress and diagnostics.
func (pr *printer) ErrStream() io.Writer {
	return pr.errStream
}

// Printf is the wrapper over fmt.Printf that prints progress messages to
// the stderr stream.
func (pr *printer) Printf(format string, args ...interface{}) {
	fmt.Fprintf(pr.errStream, format, args...)
}

// FromContextOrDie returns the printer instance associated with the context.
func FromContextOrDie(ctx context.Context) Printer {
	pr, ok := ctx.Value(printerKey).(Printer)
	if ok {
		return pr
	}
	panic("printer missing in context")
}

// WithContext creates a new context from the given parent context by
// setting the printer instance.
func WithContext(ctx context.Context, pr Printer) context.Context {
	return context.WithValue(ctx, printerKey, pr)
}
