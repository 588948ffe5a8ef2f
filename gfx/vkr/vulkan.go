// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// NewVulkanDriver loads the Vulkan API. procAddr is the vkGetInstanceProcAddr
// exposed by the windowing library; when nil the system loader is used.
func NewVulkanDriver(procAddr unsafe.Pointer) (Driver, error) {
	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr()")
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "vk.Init()")
	}
	return &vulkanDriver{}, nil
}

type vulkanDriver struct{}

func check(ret vk.Result, call string) error {
	return errors.Wrap(vk.Error(ret), call)
}

func (vulkanDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error) {
	var instance vk.Instance
	if err := check(vk.CreateInstance(info, nil, &instance), "vk.CreateInstance()"); err != nil {
		return nil, err
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, errors.Wrap(err, "vk.InitInstance()")
	}
	return instance, nil
}

func (vulkanDriver) DestroyInstance(instance vk.Instance) {
	vk.DestroyInstance(instance, nil)
}

func (vulkanDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	vk.DestroySurface(instance, surface, nil)
}

func (vulkanDriver) EnumeratePhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var deviceCount uint32
	if err := check(vk.EnumeratePhysicalDevices(instance, &deviceCount, nil), "vk.EnumeratePhysicalDevices()"); err != nil {
		return nil, err
	}
	devices := make([]vk.PhysicalDevice, deviceCount)
	if err := check(vk.EnumeratePhysicalDevices(instance, &deviceCount, devices), "vk.EnumeratePhysicalDevices()"); err != nil {
		return nil, err
	}
	return devices[:deviceCount], nil
}

func (vulkanDriver) PhysicalDeviceProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(pd, &properties)
	properties.Deref()
	return properties
}

func (vulkanDriver) PhysicalDeviceMemory(pd vk.PhysicalDevice) uint64 {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(pd, &memoryProperties)
	memoryProperties.Deref()

	var total uint64
	for i := uint32(0); i < memoryProperties.MemoryHeapCount; i++ {
		memoryProperties.MemoryHeaps[i].Deref()
		total += uint64(memoryProperties.MemoryHeaps[i].Size)
	}
	return total
}

func (vulkanDriver) QueueFamilyProperties(pd vk.PhysicalDevice) []vk.QueueFamilyProperties {
	var familyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &familyCount, nil)
	families := make([]vk.QueueFamilyProperties, familyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &familyCount, families)
	for i := range families {
		families[i].Deref()
	}
	return families
}

func (vulkanDriver) SurfaceSupport(pd vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error) {
	var supported vk.Bool32
	if err := check(vk.GetPhysicalDeviceSurfaceSupport(pd, family, surface, &supported), "vk.GetPhysicalDeviceSurfaceSupport()"); err != nil {
		return false, err
	}
	return supported == vk.True, nil
}

func (vulkanDriver) DeviceExtensions(pd vk.PhysicalDevice) ([]string, error) {
	var extensionCount uint32
	if err := check(vk.EnumerateDeviceExtensionProperties(pd, "", &extensionCount, nil), "vk.EnumerateDeviceExtensionProperties()"); err != nil {
		return nil, err
	}
	properties := make([]vk.ExtensionProperties, extensionCount)
	if err := check(vk.EnumerateDeviceExtensionProperties(pd, "", &extensionCount, properties), "vk.EnumerateDeviceExtensionProperties()"); err != nil {
		return nil, err
	}

	names := make([]string, 0, extensionCount)
	for i := range properties[:extensionCount] {
		properties[i].Deref()
		names = append(names, vk.ToString(properties[i].ExtensionName[:]))
	}
	return names, nil
}

func (vulkanDriver) SurfaceCapabilities(pd vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, error) {
	var capabilities vk.SurfaceCapabilities
	if err := check(vk.GetPhysicalDeviceSurfaceCapabilities(pd, surface, &capabilities), "vk.GetPhysicalDeviceSurfaceCapabilities()"); err != nil {
		return vk.SurfaceCapabilities{}, err
	}
	capabilities.Deref()
	capabilities.CurrentExtent.Deref()
	capabilities.MinImageExtent.Deref()
	capabilities.MaxImageExtent.Deref()
	return capabilities, nil
}

func (vulkanDriver) SurfaceFormats(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	var formatCount uint32
	if err := check(vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &formatCount, nil), "vk.GetPhysicalDeviceSurfaceFormats()"); err != nil {
		return nil, err
	}
	formats := make([]vk.SurfaceFormat, formatCount)
	if err := check(vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &formatCount, formats), "vk.GetPhysicalDeviceSurfaceFormats()"); err != nil {
		return nil, err
	}
	for i := range formats {
		formats[i].Deref()
	}
	return formats[:formatCount], nil
}

func (vulkanDriver) SurfacePresentModes(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	var modeCount uint32
	if err := check(vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &modeCount, nil), "vk.GetPhysicalDeviceSurfacePresentModes()"); err != nil {
		return nil, err
	}
	modes := make([]vk.PresentMode, modeCount)
	if err := check(vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &modeCount, modes), "vk.GetPhysicalDeviceSurfacePresentModes()"); err != nil {
		return nil, err
	}
	return modes[:modeCount], nil
}

func (vulkanDriver) CreateDevice(pd vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, error) {
	var device vk.Device
	if err := check(vk.CreateDevice(pd, info, nil, &device), "vk.CreateDevice()"); err != nil {
		return nil, err
	}
	return device, nil
}

func (vulkanDriver) DestroyDevice(device vk.Device) {
	vk.DestroyDevice(device, nil)
}

func (vulkanDriver) DeviceWaitIdle(device vk.Device) error {
	return check(vk.DeviceWaitIdle(device), "vk.DeviceWaitIdle()")
}

func (vulkanDriver) DeviceQueue(device vk.Device, family, index uint32) vk.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(device, family, index, &queue)
	return queue
}

func (vulkanDriver) CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	var swapchain vk.Swapchain
	if err := check(vk.CreateSwapchain(device, info, nil, &swapchain), "vk.CreateSwapchain()"); err != nil {
		return vk.NullSwapchain, err
	}
	return swapchain, nil
}

func (vulkanDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	vk.DestroySwapchain(device, swapchain, nil)
}

func (vulkanDriver) SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error) {
	var imageCount uint32
	if err := check(vk.GetSwapchainImages(device, swapchain, &imageCount, nil), "vk.GetSwapchainImages()"); err != nil {
		return nil, err
	}
	images := make([]vk.Image, imageCount)
	if err := check(vk.GetSwapchainImages(device, swapchain, &imageCount, images), "vk.GetSwapchainImages()"); err != nil {
		return nil, err
	}
	return images[:imageCount], nil
}

func (vulkanDriver) CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	var view vk.ImageView
	if err := check(vk.CreateImageView(device, info, nil, &view), "vk.CreateImageView()"); err != nil {
		return vk.NullImageView, err
	}
	return view, nil
}

func (vulkanDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	vk.DestroyImageView(device, view, nil)
}

func (vulkanDriver) CreateShaderModule(device vk.Device, info *vk.ShaderModuleCreateInfo) (vk.ShaderModule, error) {
	var module vk.ShaderModule
	if err := check(vk.CreateShaderModule(device, info, nil, &module), "vk.CreateShaderModule()"); err != nil {
		return vk.NullShaderModule, err
	}
	return module, nil
}

func (vulkanDriver) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {
	vk.DestroyShaderModule(device, module, nil)
}

func (vulkanDriver) CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error) {
	var layout vk.PipelineLayout
	if err := check(vk.CreatePipelineLayout(device, info, nil, &layout), "vk.CreatePipelineLayout()"); err != nil {
		return vk.NullPipelineLayout, err
	}
	return layout, nil
}

func (vulkanDriver) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	vk.DestroyPipelineLayout(device, layout, nil)
}

func (vulkanDriver) CreateRenderPass(device vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	var renderPass vk.RenderPass
	if err := check(vk.CreateRenderPass(device, info, nil, &renderPass), "vk.CreateRenderPass()"); err != nil {
		return vk.NullRenderPass, err
	}
	return renderPass, nil
}

func (vulkanDriver) DestroyRenderPass(device vk.Device, renderPass vk.RenderPass) {
	vk.DestroyRenderPass(device, renderPass, nil)
}

func (vulkanDriver) CreateGraphicsPipeline(device vk.Device, info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, error) {
	pipelines := make([]vk.Pipeline, 1)
	ret := vk.CreateGraphicsPipelines(device, vk.PipelineCache(vk.NullHandle), 1, []vk.GraphicsPipelineCreateInfo{*info}, nil, pipelines)
	if err := check(ret, "vk.CreateGraphicsPipelines()"); err != nil {
		return vk.NullPipeline, err
	}
	return pipelines[0], nil
}

func (vulkanDriver) DestroyPipeline(device vk.Device, pipeline vk.Pipeline) {
	vk.DestroyPipeline(device, pipeline, nil)
}

func (vulkanDriver) CreateFramebuffer(device vk.Device, info *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	var framebuffer vk.Framebuffer
	if err := check(vk.CreateFramebuffer(device, info, nil, &framebuffer), "vk.CreateFramebuffer()"); err != nil {
		return vk.NullFramebuffer, err
	}
	return framebuffer, nil
}

func (vulkanDriver) DestroyFramebuffer(device vk.Device, framebuffer vk.Framebuffer) {
	vk.DestroyFramebuffer(device, framebuffer, nil)
}

func (vulkanDriver) CreateCommandPool(device vk.Device, info *vk.CommandPoolCreateInfo) (vk.CommandPool, error) {
	var pool vk.CommandPool
	if err := check(vk.CreateCommandPool(device, info, nil, &pool), "vk.CreateCommandPool()"); err != nil {
		return vk.NullCommandPool, err
	}
	return pool, nil
}

func (vulkanDriver) DestroyCommandPool(device vk.Device, pool vk.CommandPool) {
	vk.DestroyCommandPool(device, pool, nil)
}

func (vulkanDriver) AllocateCommandBuffer(device vk.Device, info *vk.CommandBufferAllocateInfo) (vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, 1)
	if err := check(vk.AllocateCommandBuffers(device, info, buffers), "vk.AllocateCommandBuffers()"); err != nil {
		return nil, err
	}
	return buffers[0], nil
}

func (vulkanDriver) CreateSemaphore(device vk.Device, info *vk.SemaphoreCreateInfo) (vk.Semaphore, error) {
	var semaphore vk.Semaphore
	if err := check(vk.CreateSemaphore(device, info, nil, &semaphore), "vk.CreateSemaphore()"); err != nil {
		return vk.NullSemaphore, err
	}
	return semaphore, nil
}

func (vulkanDriver) DestroySemaphore(device vk.Device, semaphore vk.Semaphore) {
	vk.DestroySemaphore(device, semaphore, nil)
}

func (vulkanDriver) CreateFence(device vk.Device, info *vk.FenceCreateInfo) (vk.Fence, error) {
	var fence vk.Fence
	if err := check(vk.CreateFence(device, info, nil, &fence), "vk.CreateFence()"); err != nil {
		return vk.NullFence, err
	}
	return fence, nil
}

func (vulkanDriver) DestroyFence(device vk.Device, fence vk.Fence) {
	vk.DestroyFence(device, fence, nil)
}

func (vulkanDriver) WaitForFence(device vk.Device, fence vk.Fence, timeout uint64) error {
	return check(vk.WaitForFences(device, 1, []vk.Fence{fence}, vk.True, timeout), "vk.WaitForFences()")
}

func (vulkanDriver) ResetFence(device vk.Device, fence vk.Fence) error {
	return check(vk.ResetFences(device, 1, []vk.Fence{fence}), "vk.ResetFences()")
}

// AcquireNextImage treats VK_SUBOPTIMAL_KHR as success, it is a success code.
func (vulkanDriver) AcquireNextImage(device vk.Device, swapchain vk.Swapchain, timeout uint64, signal vk.Semaphore) (uint32, error) {
	var imageIndex uint32
	ret := vk.AcquireNextImage(device, swapchain, timeout, signal, vk.NullFence, &imageIndex)
	if ret == vk.Suboptimal {
		return imageIndex, nil
	}
	if err := check(ret, "vk.AcquireNextImage()"); err != nil {
		return 0, err
	}
	return imageIndex, nil
}

func (vulkanDriver) QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) error {
	return check(vk.QueueSubmit(queue, uint32(len(submits)), submits, fence), "vk.QueueSubmit()")
}

func (vulkanDriver) QueuePresent(queue vk.Queue, info *vk.PresentInfo) error {
	ret := vk.QueuePresent(queue, info)
	if ret == vk.Suboptimal {
		return nil
	}
	return check(ret, "vk.QueuePresent()")
}

func (vulkanDriver) ResetCommandBuffer(buffer vk.CommandBuffer) error {
	return check(vk.ResetCommandBuffer(buffer, 0), "vk.ResetCommandBuffer()")
}

func (vulkanDriver) BeginCommandBuffer(buffer vk.CommandBuffer, info *vk.CommandBufferBeginInfo) error {
	return check(vk.BeginCommandBuffer(buffer, info), "vk.BeginCommandBuffer()")
}

func (vulkanDriver) EndCommandBuffer(buffer vk.CommandBuffer) error {
	return check(vk.EndCommandBuffer(buffer), "vk.EndCommandBuffer()")
}

func (vulkanDriver) CmdBeginRenderPass(buffer vk.CommandBuffer, info *vk.RenderPassBeginInfo) {
	vk.CmdBeginRenderPass(buffer, info, vk.SubpassContentsInline)
}

func (vulkanDriver) CmdBindPipeline(buffer vk.CommandBuffer, pipeline vk.Pipeline) {
	vk.CmdBindPipeline(buffer, vk.PipelineBindPointGraphics, pipeline)
}

func (vulkanDriver) CmdSetViewport(buffer vk.CommandBuffer, viewport vk.Viewport) {
	vk.CmdSetViewport(buffer, 0, 1, []vk.Viewport{viewport})
}

func (vulkanDriver) CmdSetScissor(buffer vk.CommandBuffer, scissor vk.Rect2D) {
	vk.CmdSetScissor(buffer, 0, 1, []vk.Rect2D{scissor})
}

func (vulkanDriver) CmdDraw(buffer vk.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vk.CmdDraw(buffer, vertexCount, instanceCount, firstVertex, firstInstance)
}

func (vulkanDriver) CmdEndRenderPass(buffer vk.CommandBuffer) {
	vk.CmdEndRenderPass(buffer)
}
