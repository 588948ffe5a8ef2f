// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	vk "github.com/vulkan-go/vulkan"
)

// Preferred surface format and colour space.
const (
	PreferredFormat     = vk.FormatB8g8r8a8Srgb
	PreferredColorSpace = vk.ColorspaceSrgbNonlinear
)

// ChooseSurfaceFormat picks the swapchain format. The first reported format
// is returned unless honourPreferred is set and the preferred pair is offered.
// formats must not be empty.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat, honourPreferred bool) vk.SurfaceFormat {
	for _, format := range formats {
		if format.Format == PreferredFormat && format.ColorSpace == PreferredColorSpace {
			if honourPreferred {
				return format
			}
			log("swapchain").Debug("preferred surface format offered but not honoured")
			break
		}
	}
	return formats[0]
}

// ChoosePresentMode returns mailbox when available, otherwise FIFO which every
// surface supports.
func ChoosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	return vk.PresentModeFifo
}

// ChooseSwapExtent returns the current extent of the surface, or when the
// surface leaves it to the application, the framebuffer size clamped to the
// surface limits.
func ChooseSwapExtent(capabilities vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if capabilities.CurrentExtent.Width != vk.MaxUint32 {
		return capabilities.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clamp(width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clamp(height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

// chooseImageCount keeps the configured count within the surface limits,
// a MaxImageCount of 0 means there is no upper limit.
func chooseImageCount(capabilities vk.SurfaceCapabilities, wanted uint32) uint32 {
	if wanted < capabilities.MinImageCount {
		return capabilities.MinImageCount
	}
	if capabilities.MaxImageCount > 0 && wanted > capabilities.MaxImageCount {
		return capabilities.MaxImageCount
	}
	return wanted
}

func clamp(value, min, max uint32) uint32 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Swapchain owns the presentable images and one view per image.
type Swapchain struct {
	drv    Driver
	device vk.Device

	Handle      vk.Swapchain
	Format      vk.Format
	ColorSpace  vk.ColorSpace
	PresentMode vk.PresentMode
	Extent      vk.Extent2D
	Images      []vk.Image
	ImageViews  []vk.ImageView
}

// CreateSwapchain creates the swapchain for surface and a 2D colour view for
// each of its images. width and height are the window framebuffer size.
func CreateSwapchain(drv Driver, ctx *DeviceContext, surface vk.Surface, info *DeviceInfo, width, height uint32, cfg Configuration) (*Swapchain, error) {
	format := ChooseSurfaceFormat(info.Formats, cfg.PreferSRGB)
	s := &Swapchain{
		drv:         drv,
		device:      ctx.Device,
		Format:      format.Format,
		ColorSpace:  format.ColorSpace,
		PresentMode: ChoosePresentMode(info.PresentModes),
		Extent:      ChooseSwapExtent(info.Capabilities, width, height),
	}

	sci := swapchainCreateInfo(surface, info.Capabilities, ctx.Families, chooseImageCount(info.Capabilities, cfg.SwapchainSize), format, s.PresentMode, s.Extent)
	swapchain, err := drv.CreateSwapchain(ctx.Device, &sci)
	if err != nil {
		return nil, creationError(ObjectSwapchain, err)
	}
	s.Handle = swapchain

	images, err := drv.SwapchainImages(ctx.Device, swapchain)
	if err != nil {
		s.Release()
		return nil, creationError(ObjectSwapchain, err)
	}
	s.Images = images

	for _, image := range images {
		ivci := imageViewCreateInfo(image, s.Format)
		view, err := drv.CreateImageView(ctx.Device, &ivci)
		if err != nil {
			s.Release()
			return nil, creationError(ObjectImageView, err)
		}
		s.ImageViews = append(s.ImageViews, view)
	}

	log("swapchain").WithFields(map[string]interface{}{
		"images":  len(s.Images),
		"format":  s.Format,
		"mode":    s.PresentMode,
		"width":   s.Extent.Width,
		"height":  s.Extent.Height,
		"sharing": sci.ImageSharingMode,
	}).Info("swapchain created")
	return s, nil
}

func swapchainCreateInfo(surface vk.Surface, capabilities vk.SurfaceCapabilities, families QueueFamilies, imageCount uint32,
	format vk.SurfaceFormat, mode vk.PresentMode, extent vk.Extent2D) vk.SwapchainCreateInfo {
	sci := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    imageCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      mode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	if !families.Shared() {
		sci.ImageSharingMode = vk.SharingModeConcurrent
		sci.QueueFamilyIndexCount = 2
		sci.PQueueFamilyIndices = families.Distinct()
	}
	return sci
}

func imageViewCreateInfo(image vk.Image, format vk.Format) vk.ImageViewCreateInfo {
	return vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
}

// Release destroys the image views, then the swapchain.
// The images themselves belong to the swapchain.
func (s *Swapchain) Release() {
	for idx := len(s.ImageViews) - 1; idx >= 0; idx-- {
		s.drv.DestroyImageView(s.device, s.ImageViews[idx])
	}
	s.ImageViews = nil
	s.Images = nil
	s.drv.DestroySwapchain(s.device, s.Handle)
}
