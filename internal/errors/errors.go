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

// Package errors defines the error handling used by the git-bv codebase.
package errors

import (
	goerrors "errors"
	"fmt"
	"strings"

	"github.com/brainvisa/git-bv/internal/types"
)

// As is a passthrough to the standard library errors.As. It is re-exported
// here so callers need a single errors import.
func As(err error, target interface{}) bool {
	return goerrors.As(err, target)
}

// Error is the error implementation used across git-bv. It is based on the
// design in https://commandcenter.blogspot.com/2017/12/error-handling-in-upspin.html
type Error struct {
	// Path is the path of the source repository involved in the operation.
	Path types.UniquePath

	// Op is the operation being performed, e.g. registry.addComponent.
	Op Op

	// Kind is the class of error.
	Kind Kind

	// Err is the wrapped error, if any.
	Err error
}

func (e *Error) Error() string {
	b := new(strings.Builder)

	if e.Op != "" {
		pad(b, ": ")
		b.WriteString(string(e.Op))
	}

	if e.Path != "" {
		pad(b, ": ")
		b.WriteString("repo ")
		b.WriteString(string(e.Path))
	}

	if e.Kind != 0 {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}

	if e.Err != nil {
		if wrappedErr, ok := e.Err.(*Error); ok {
			if !wrappedErr.Zero() {
				pad(b, ":\n\t")
				b.WriteString(wrappedErr.Error())
			}
		} else {
			pad(b, ": ")
			b.WriteString(e.Err.Error())
		}
	}
	if b.Len() == 0 {
		return "no error"
	}
	return b.String()
}

// pad appends str to the buffer unless the buffer is still empty.
func pad(b *strings.Builder, str string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(str)
}

func (e *Error) Zero() bool {
	return e.Op == "" && e.Path == "" && e.Kind == 0 && e.Err == nil
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Op describes the operation being performed.
type Op string

// Kind describes the class of errors encountered.
type Kind int

const (
	Other          Kind = iota // Unclassified. Will not be printed.
	Exist                      // Item already exists.
	NotExist                   // Item does not exist.
	NotInitialized             // Directory is not an initialized source repository.
	MalformedEntry             // Persisted entry does not parse.
	Internal                   // Internal error.
	InvalidParam               // Value is not valid.
	Git                        // Errors from git.
	IO                         // Error doing IO operations.
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "other error"
	case Exist:
		return "item already exists"
	case NotExist:
		return "item does not exist"
	case NotInitialized:
		return "not a source repository"
	case MalformedEntry:
		return "malformed registry entry"
	case Internal:
		return "internal error"
	case InvalidParam:
		return "invalid parameter value"
	case Git:
		return "git error"
	case IO:
		return "IO error"
	}
	return "unknown kind"
}

// E builds an *Error from its arguments. Each argument sets the Error field
// matching its type; a string argument becomes the wrapped error message.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("errors.E must have at least one argument")
	}

	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case types.UniquePath:
			e.Path = a
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case *Error:
			cp := *a
			e.Err = &cp
		case error:
			e.Err = a
		case string:
			e.Err = fmt.Errorf("%s", a)
		default:
			panic(fmt.Errorf("unknown type %T for value %v in call to errors.E", a, a))
		}
	}

	wrappedErr, ok := e.Err.(*Error)
	if !ok {
		return e
	}

	// Suppress fields repeated verbatim by the wrapped error.
	if e.Path == wrappedErr.Path {
		wrappedErr.Path = ""
	}

	if e.Op == wrappedErr.Op {
		wrappedErr.Op = ""
	}

	if e.Kind == wrappedErr.Kind {
		wrappedErr.Kind = 0
	}

	return e
}

// Is reports whether err or any error it wraps is an *Error of kind k.
func Is(err error, k Kind) bool {
	for err != nil {
		e, ok := err.(*Error)
		if !ok {
			return false
		}
		if e.Kind == k {
			return true
		}
		err = e.Err
	}
	return false
}
