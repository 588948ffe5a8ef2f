// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"context"
	"time"

	"github.com/devblok/prism/gfx"
	vk "github.com/vulkan-go/vulkan"
)

// Graphics is the top level rendering context. It owns every GPU object the
// renderer creates and destroys them in exact reverse creation order.
type Graphics struct {
	drv Driver

	Instance     vk.Instance
	Surface      vk.Surface
	Device       *DeviceInfo
	Context      *DeviceContext
	Swapchain    *Swapchain
	Pipeline     *Pipeline
	Framebuffers *Framebuffers
	Commands     *CommandExecutor
	Sync         *FrameSync
	Loop         *FrameLoop

	teardown teardown
}

// NewGraphics initialises the renderer for window. When any step fails
// everything created up to that point is released before returning.
func NewGraphics(drv Driver, window gfx.Window, shaders ShaderSource, cfg Configuration) (*Graphics, error) {
	g := &Graphics{drv: drv}
	if err := g.initialise(window, shaders, cfg); err != nil {
		g.Release()
		return nil, err
	}
	return g, nil
}

func (g *Graphics) initialise(window gfx.Window, shaders ShaderSource, cfg Configuration) error {
	drv := g.drv

	instance, err := CreateInstance(drv, cfg)
	if err != nil {
		return err
	}
	g.Instance = instance
	g.teardown.push("instance", func() { drv.DestroyInstance(instance) })

	surface, err := window.CreateSurface(instance)
	if err != nil {
		return creationError(ObjectSurface, err)
	}
	g.Surface = surface
	g.teardown.push("surface", func() { drv.DestroySurface(instance, surface) })

	if g.Device, err = SelectDevice(drv, instance, surface, cfg.DeviceExtensions); err != nil {
		return err
	}

	if g.Context, err = CreateLogicalDevice(drv, g.Device.PhysicalDevice, g.Device.Families, cfg.DeviceExtensions); err != nil {
		return err
	}
	g.teardown.pushReleasable("device", g.Context)

	width, height := window.FramebufferSize()
	if g.Swapchain, err = CreateSwapchain(drv, g.Context, surface, g.Device, width, height, cfg); err != nil {
		return err
	}
	g.teardown.pushReleasable("swapchain", g.Swapchain)

	if g.Pipeline, err = BuildPipeline(drv, g.Context.Device, g.Swapchain.Format, shaders, cfg); err != nil {
		return err
	}
	g.teardown.pushReleasable("pipeline", g.Pipeline)

	if g.Framebuffers, err = BuildFramebuffers(drv, g.Context.Device, g.Pipeline.RenderPass, g.Swapchain.ImageViews, g.Swapchain.Extent); err != nil {
		return err
	}
	g.teardown.pushReleasable("framebuffers", g.Framebuffers)

	if g.Commands, err = CreateCommandResources(drv, g.Context.Device, g.Context.Families.Graphics); err != nil {
		return err
	}
	g.teardown.pushReleasable("commands", g.Commands)

	if g.Sync, err = CreateSyncObjects(drv, g.Context.Device); err != nil {
		return err
	}
	g.teardown.pushReleasable("sync", g.Sync)

	g.Loop = NewFrameLoop(drv, g.Context, g.Swapchain, g.Pipeline, g.Framebuffers, g.Commands, g.Sync)
	log("graphics").WithField("objects", g.teardown.names()).Debug("graphics initialised")
	return nil
}

// DrawFrame draws a single frame.
func (g *Graphics) DrawFrame() error {
	return g.Loop.DrawFrame()
}

// Run draws frames until window closes or ctx is done.
func (g *Graphics) Run(ctx context.Context, window gfx.Window, pace <-chan time.Time) error {
	return g.Loop.Run(ctx, window, pace)
}

// Release waits for the device to go idle, then destroys everything in
// reverse creation order. Calling it again does nothing.
func (g *Graphics) Release() {
	if g.Context != nil {
		if err := g.Context.WaitIdle(); err != nil {
			log("graphics").WithError(err).Warn("device did not go idle before teardown")
		}
	}
	g.teardown.release()

	g.Loop = nil
	g.Sync = nil
	g.Commands = nil
	g.Framebuffers = nil
	g.Pipeline = nil
	g.Swapchain = nil
	g.Context = nil
	g.Device = nil
	g.Surface = vk.NullSurface
	g.Instance = nil
}
