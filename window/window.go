// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package window opens a native window the renderer can present to.
// All calls must be made from the main OS thread.
package window

import (
	"unsafe"

	"github.com/pkg/errors"

	"github.com/devblok/prism/gfx"
)

// Options describe the window to open.
type Options struct {
	Title  string
	Width  uint32
	Height uint32

	// Hidden windows are never shown, they only serve to create a surface.
	Hidden bool
}

// Window is a native window backed by a windowing library.
type Window interface {
	gfx.Window

	// InstanceProcAddr returns vkGetInstanceProcAddr as loaded
	// by the windowing library.
	InstanceProcAddr() unsafe.Pointer

	// InstanceExtensions returns the instance extensions needed
	// to create a surface for this window.
	InstanceExtensions() []string

	// Close destroys the window and shuts the library down.
	Close()
}

// Open opens a window with the named backend, sdl or glfw.
func Open(backend string, opts Options) (Window, error) {
	switch backend {
	case "sdl":
		return NewSDL(opts)
	case "glfw":
		return NewGLFW(opts)
	default:
		return nil, errors.Errorf("unknown window backend %q", backend)
	}
}
