// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import (
	"unsafe"

	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
	vk "github.com/vulkan-go/vulkan"
)

// SDL is a window opened with SDL2.
type SDL struct {
	window      *sdl.Window
	shouldClose bool
}

// NewSDL initialises SDL video and events, loads the Vulkan
// library and opens a Vulkan capable window.
func NewSDL(opts Options) (*SDL, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, errors.Wrap(err, "sdl.Init()")
	}

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "sdl.VulkanLoadLibrary()")
	}

	var flags uint32 = sdl.WINDOW_VULKAN
	if opts.Hidden {
		flags |= sdl.WINDOW_HIDDEN
	}

	window, err := sdl.CreateWindow(opts.Title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(opts.Width),
		int32(opts.Height),
		flags)
	if err != nil {
		sdl.VulkanUnloadLibrary()
		sdl.Quit()
		return nil, errors.Wrap(err, "sdl.CreateWindow()")
	}

	return &SDL{window: window}, nil
}

// InstanceProcAddr implements Window.
func (s *SDL) InstanceProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

// InstanceExtensions implements Window.
func (s *SDL) InstanceExtensions() []string {
	return s.window.VulkanGetInstanceExtensions()
}

// CreateSurface implements gfx.Window.
func (s *SDL) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surface, err := s.window.VulkanCreateSurface(instance)
	if err != nil {
		return vk.NullSurface, errors.Wrap(err, "sdl.VulkanCreateSurface()")
	}
	return vk.SurfaceFromPointer(uintptr(surface)), nil
}

// FramebufferSize implements gfx.Window.
func (s *SDL) FramebufferSize() (uint32, uint32) {
	width, height := s.window.VulkanGetDrawableSize()
	return uint32(width), uint32(height)
}

// PollEvents implements gfx.Window.
func (s *SDL) PollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if closeRequested(event) {
			s.shouldClose = true
		}
	}
}

func closeRequested(event sdl.Event) bool {
	switch et := event.(type) {
	case *sdl.KeyboardEvent:
		return et.Type == sdl.KEYDOWN && et.Keysym.Sym == sdl.K_ESCAPE
	case *sdl.QuitEvent:
		return true
	}
	return false
}

// ShouldClose implements gfx.Window.
func (s *SDL) ShouldClose() bool {
	return s.shouldClose
}

// Close implements Window.
func (s *SDL) Close() {
	if s.window != nil {
		s.window.Destroy()
		s.window = nil
	}
	sdl.VulkanUnloadLibrary()
	sdl.Quit()
}
