// Copyright 2026 CoreOS, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tty writes pass and fail markers in color when the output is an
// interactive terminal.
package tty

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/coreos/pkg/capnslog"
	"golang.org/x/term"
)

var plog = capnslog.NewPackageLogger("github.com/coreos/microharness", "harness/tty")

// StyleWriter writes text with an optional pass or fail style around it.
type StyleWriter interface {
	io.Writer
	BeginStyle(passing bool)
	EndStyle()
}

// ColorMode selects when styles are applied.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// Set implements flag.Value.
func (m *ColorMode) Set(s string) error {
	switch strings.ToLower(s) {
	case "auto", "":
		*m = ColorAuto
	case "always", "true":
		*m = ColorAlways
	case "never", "false":
		*m = ColorNever
	default:
		return fmt.Errorf("invalid color mode %q, want auto, always or never", s)
	}
	return nil
}

// Type implements pflag.Value.
func (m *ColorMode) Type() string {
	return "color"
}

// Emit writes text styled as passing or failing. Errors are dropped.
func Emit(sw StyleWriter, text string, passing bool) {
	sw.BeginStyle(passing)
	io.WriteString(sw, text)
	sw.EndStyle()
}

type fder interface {
	Fd() uintptr
}

// New returns a StyleWriter for w. With ColorAuto the backend is chosen on
// first use: a terminal gets colors, anything else plain text.
func New(w io.Writer, mode ColorMode) StyleWriter {
	return &lazyWriter{w: w, mode: mode}
}

type lazyWriter struct {
	w    io.Writer
	mode ColorMode
	once sync.Once
	sw   StyleWriter
}

func (l *lazyWriter) backend() StyleWriter {
	l.once.Do(func() {
		l.sw = detect(l.w, l.mode)
	})
	return l.sw
}

func (l *lazyWriter) Write(p []byte) (int, error) { return l.backend().Write(p) }
func (l *lazyWriter) BeginStyle(passing bool)     { l.backend().BeginStyle(passing) }
func (l *lazyWriter) EndStyle()                   { l.backend().EndStyle() }

func detect(w io.Writer, mode ColorMode) StyleWriter {
	switch mode {
	case ColorNever:
		return Plain(w)
	case ColorAlways:
		return ANSI(w)
	}
	f, ok := w.(fder)
	if !ok {
		return Plain(w)
	}
	fd := f.Fd()
	if fd > uintptr(^uint(0)>>1) || !term.IsTerminal(int(fd)) {
		return Plain(w)
	}
	return console(w, fd)
}

const (
	sgrPassing = "\x1b[32;1m"
	sgrFailing = "\x1b[31;1m"
	sgrReset   = "\x1b[0m"
)

type ansiWriter struct {
	io.Writer
}

// ANSI returns a StyleWriter using SGR escape sequences.
func ANSI(w io.Writer) StyleWriter {
	return ansiWriter{w}
}

func (a ansiWriter) BeginStyle(passing bool) {
	if passing {
		io.WriteString(a.Writer, sgrPassing)
	} else {
		io.WriteString(a.Writer, sgrFailing)
	}
}

func (a ansiWriter) EndStyle() {
	io.WriteString(a.Writer, sgrReset)
}

type plainWriter struct {
	io.Writer
}

// Plain returns a StyleWriter that ignores styles.
func Plain(w io.Writer) StyleWriter {
	return plainWriter{w}
}

func (plainWriter) BeginStyle(bool) {}
func (plainWriter) EndStyle()       {}
