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

//go:build windows

package tty

import (
	"io"
	"sync"

	"golang.org/x/sys/windows"
)

const (
	fgBlue      = 0x1
	fgGreen     = 0x2
	fgRed       = 0x4
	fgIntensity = 0x8

	attrPassing = fgGreen | fgIntensity
	attrFailing = fgRed | fgIntensity
	// light grey on black, what a fresh console starts with
	attrDefault = fgRed | fgGreen | fgBlue
)

var (
	kernel32                    = windows.NewLazySystemDLL("kernel32.dll")
	procSetConsoleTextAttribute = kernel32.NewProc("SetConsoleTextAttribute")

	attrWarning sync.Once
)

// console prefers virtual terminal processing and falls back to console
// text attributes on hosts that cannot enable it.
func console(w io.Writer, fd uintptr) StyleWriter {
	h := windows.Handle(fd)
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err == nil {
		if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
			return ANSI(w)
		}
		if err := windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING); err == nil {
			return ANSI(w)
		}
	}
	return &consoleWriter{Writer: w, h: h}
}

type consoleWriter struct {
	io.Writer
	h     windows.Handle
	saved uint16
}

func (c *consoleWriter) BeginStyle(passing bool) {
	var info windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(c.h, &info); err != nil {
		attrWarning.Do(func() {
			plog.Warningf("could not read console attributes: %v", err)
		})
		c.saved = attrDefault
	} else {
		c.saved = info.Attributes
	}
	attr := uint16(attrFailing)
	if passing {
		attr = attrPassing
	}
	c.set(attr)
}

func (c *consoleWriter) EndStyle() {
	c.set(c.saved)
}

func (c *consoleWriter) set(attr uint16) {
	procSetConsoleTextAttribute.Call(uintptr(c.h), uintptr(attr))
}
