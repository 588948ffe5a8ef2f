// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import vk "github.com/vulkan-go/vulkan"

// Framebuffers holds one framebuffer per swapchain image view, index aligned.
type Framebuffers struct {
	drv    Driver
	device vk.Device

	Handles []vk.Framebuffer
	Extent  vk.Extent2D
}

// BuildFramebuffers binds every view to renderPass as its only attachment.
func BuildFramebuffers(drv Driver, device vk.Device, renderPass vk.RenderPass, views []vk.ImageView, extent vk.Extent2D) (*Framebuffers, error) {
	f := &Framebuffers{
		drv:     drv,
		device:  device,
		Handles: make([]vk.Framebuffer, 0, len(views)),
		Extent:  extent,
	}

	for _, view := range views {
		attachments := []vk.ImageView{view}
		fci := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      renderPass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           extent.Width,
			Height:          extent.Height,
			Layers:          1,
		}

		framebuffer, err := drv.CreateFramebuffer(device, &fci)
		if err != nil {
			f.Release()
			return nil, creationError(ObjectFramebuffer, err)
		}
		f.Handles = append(f.Handles, framebuffer)
	}
	return f, nil
}

// Get returns the framebuffer for the swapchain image at idx.
func (f *Framebuffers) Get(idx uint32) vk.Framebuffer {
	return f.Handles[idx]
}

// Release destroys the framebuffers in reverse order.
func (f *Framebuffers) Release() {
	for idx := len(f.Handles) - 1; idx >= 0; idx-- {
		f.drv.DestroyFramebuffer(f.device, f.Handles[idx])
	}
	f.Handles = nil
}
