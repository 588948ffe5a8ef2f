// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import vk "github.com/vulkan-go/vulkan"

// Configuration is used to configure the renderer.
type Configuration struct {
	ApplicationName string
	EngineName      string

	// InstanceExtensions are the extensions the window needs to create a surface.
	InstanceExtensions []string

	// DeviceExtensions are required of the physical device and enabled on the
	// logical device. Names may be given with or without a NUL terminator.
	DeviceExtensions []string

	// SwapchainSize is the number of images asked of the swapchain,
	// kept within the limits the surface reports.
	SwapchainSize uint32

	// PreferSRGB makes the swapchain use B8G8R8A8_SRGB/SRGB_NONLINEAR when the
	// surface offers it. When false the first reported format is used.
	PreferSRGB bool

	VertexShader   string
	FragmentShader string
}

// DefaultConfiguration returns the configuration the renderer runs with
// when nothing is overridden.
func DefaultConfiguration() Configuration {
	return Configuration{
		ApplicationName:  "VulkanGraphics",
		EngineName:       "No Engine",
		DeviceExtensions: []string{vk.KhrSwapchainExtensionName},
		SwapchainSize:    3,
		VertexShader:     "vert.spv",
		FragmentShader:   "frag.spv",
	}
}
