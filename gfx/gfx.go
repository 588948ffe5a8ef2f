// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gfx defines rendering related features that renderers
// and their collaborators must implement.
package gfx

import vk "github.com/vulkan-go/vulkan"

// Releasable defines any GPU-resource owning item that can be freed.
type Releasable interface {

	// Release releases resources held by the implementing structure.
	Release()
}

// Window is the windowing collaborator a renderer draws to.
type Window interface {

	// CreateSurface creates a presentable surface for the window.
	CreateSurface(instance vk.Instance) (vk.Surface, error)

	// FramebufferSize returns the drawable size in pixels.
	FramebufferSize() (width, height uint32)

	// PollEvents processes pending window events.
	PollEvents()

	// ShouldClose reports whether the window was asked to close.
	ShouldClose() bool
}
