// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

type event struct {
	op   string
	kind string
	id   int
}

type fakeDevice struct {
	name         string
	families     []vk.QueueFamilyProperties
	present      []bool
	extensions   []string
	capabilities vk.SurfaceCapabilities
	formats      []vk.SurfaceFormat
	modes        []vk.PresentMode
	queryErr     error
}

func graphicsFamily() vk.QueueFamilyProperties {
	return vk.QueueFamilyProperties{
		QueueFlags: vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueTransferBit),
		QueueCount: 1,
	}
}

func computeFamily() vk.QueueFamilyProperties {
	return vk.QueueFamilyProperties{
		QueueFlags: vk.QueueFlags(vk.QueueComputeBit),
		QueueCount: 1,
	}
}

func undefinedExtentCapabilities() vk.SurfaceCapabilities {
	return vk.SurfaceCapabilities{
		MinImageCount:    2,
		MaxImageCount:    8,
		CurrentExtent:    vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
		MinImageExtent:   vk.Extent2D{Width: 200, Height: 200},
		MaxImageExtent:   vk.Extent2D{Width: 800, Height: 800},
		CurrentTransform: vk.SurfaceTransformIdentityBit,
	}
}

// suitableDevice has one family doing graphics and present.
func suitableDevice(name string) *fakeDevice {
	return &fakeDevice{
		name:         name,
		families:     []vk.QueueFamilyProperties{graphicsFamily()},
		present:      []bool{true},
		extensions:   []string{"VK_KHR_maintenance1", vk.KhrSwapchainExtensionName},
		capabilities: undefinedExtentCapabilities(),
		formats: []vk.SurfaceFormat{
			{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorspaceSrgbNonlinear},
			{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorspaceSrgbNonlinear},
		},
		modes: []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox},
	}
}

// splitQueueDevice presents from family 2 and draws on family 1.
func splitQueueDevice(name string) *fakeDevice {
	d := suitableDevice(name)
	d.families = []vk.QueueFamilyProperties{computeFamily(), graphicsFamily(), computeFamily()}
	d.present = []bool{false, false, true}
	return d
}

type fakeDriver struct {
	devices  []*fakeDevice
	physical []vk.PhysicalDevice
	byHandle map[vk.PhysicalDevice]*fakeDevice

	// fail maps an object kind to the number of successful creations
	// allowed before creation of that kind starts failing.
	fail    map[string]int
	created map[string]int
	enumErr error

	handles uintptr
	ids     map[unsafe.Pointer]int
	nextID  int
	events  []event

	imageCount int
	nextImage  uint32
	signalled  map[vk.Fence]bool
	commands   []string
	failOp     map[string]error

	deviceInfo    *vk.DeviceCreateInfo
	swapchainInfo *vk.SwapchainCreateInfo
	renderPass    *vk.RenderPassCreateInfo
	pipelineInfo  *vk.GraphicsPipelineCreateInfo
	poolInfo      *vk.CommandPoolCreateInfo
	fenceInfo     *vk.FenceCreateInfo
	framebuffers  []vk.FramebufferCreateInfo
	submits       [][]vk.SubmitInfo
	presents      []vk.PresentInfo
	queues        [][2]uint32
}

func newFakeDriver(devices ...*fakeDevice) *fakeDriver {
	f := &fakeDriver{
		devices:    devices,
		byHandle:   make(map[vk.PhysicalDevice]*fakeDevice),
		fail:       make(map[string]int),
		created:    make(map[string]int),
		ids:        make(map[unsafe.Pointer]int),
		imageCount: 3,
		signalled:  make(map[vk.Fence]bool),
		failOp:     make(map[string]error),
	}
	for _, d := range devices {
		pd := vk.PhysicalDevice(f.pointer())
		f.physical = append(f.physical, pd)
		f.byHandle[pd] = d
	}
	return f
}

// fakeHandleBase keeps synthetic handles clear of the zero page and far
// below the Go heap. Handles are never dereferenced.
const fakeHandleBase = 0x10000

// pointer mints a unique handle value outside the Go heap, as a real
// driver would hand out.
func (f *fakeDriver) pointer() unsafe.Pointer {
	f.handles++
	return unsafe.Pointer(fakeHandleBase + f.handles<<4)
}

func (f *fakeDriver) create(kind Object) (unsafe.Pointer, error) {
	name := string(kind)
	if allowed, ok := f.fail[name]; ok && f.created[name] >= allowed {
		return nil, fmt.Errorf("fake: %s creation failed", name)
	}
	f.created[name]++

	p := f.pointer()
	f.nextID++
	f.ids[p] = f.nextID
	f.events = append(f.events, event{op: "create", kind: name, id: f.nextID})
	return p, nil
}

func (f *fakeDriver) destroy(kind Object, p unsafe.Pointer) {
	f.events = append(f.events, event{op: "destroy", kind: string(kind), id: f.ids[p]})
}

func (f *fakeDriver) id(p unsafe.Pointer) int {
	return f.ids[p]
}

// lifetimes returns the ids of created and destroyed objects in order,
// leaving out objects that are freed along with their parent.
func (f *fakeDriver) lifetimes() (created, destroyed []int) {
	for _, e := range f.events {
		if e.kind == string(ObjectCommandBuffer) {
			continue
		}
		switch e.op {
		case "create":
			created = append(created, e.id)
		case "destroy":
			destroyed = append(destroyed, e.id)
		}
	}
	return created, destroyed
}

func (f *fakeDriver) kinds(op string) []string {
	var kinds []string
	for _, e := range f.events {
		if e.op == op {
			kinds = append(kinds, e.kind)
		}
	}
	return kinds
}

func (f *fakeDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error) {
	p, err := f.create(ObjectInstance)
	return vk.Instance(p), err
}

func (f *fakeDriver) DestroyInstance(instance vk.Instance) {
	f.destroy(ObjectInstance, unsafe.Pointer(instance))
}

func (f *fakeDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	f.destroy(ObjectSurface, unsafe.Pointer(surface))
}

func (f *fakeDriver) EnumeratePhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	if f.enumErr != nil {
		return nil, f.enumErr
	}
	return f.physical, nil
}

func (f *fakeDriver) PhysicalDeviceProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var properties vk.PhysicalDeviceProperties
	copy(properties.DeviceName[:], f.byHandle[pd].name)
	properties.DeviceID = uint32(len(f.byHandle[pd].name))
	properties.VendorID = 0x10de
	return properties
}

func (f *fakeDriver) PhysicalDeviceMemory(pd vk.PhysicalDevice) uint64 {
	return 1 << 30
}

func (f *fakeDriver) QueueFamilyProperties(pd vk.PhysicalDevice) []vk.QueueFamilyProperties {
	return f.byHandle[pd].families
}

func (f *fakeDriver) SurfaceSupport(pd vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error) {
	d := f.byHandle[pd]
	if d.queryErr != nil {
		return false, d.queryErr
	}
	return d.present[family], nil
}

func (f *fakeDriver) DeviceExtensions(pd vk.PhysicalDevice) ([]string, error) {
	return f.byHandle[pd].extensions, nil
}

func (f *fakeDriver) SurfaceCapabilities(pd vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, error) {
	return f.byHandle[pd].capabilities, nil
}

func (f *fakeDriver) SurfaceFormats(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	return f.byHandle[pd].formats, nil
}

func (f *fakeDriver) SurfacePresentModes(pd vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	return f.byHandle[pd].modes, nil
}

func (f *fakeDriver) CreateDevice(pd vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, error) {
	f.deviceInfo = info
	p, err := f.create(ObjectDevice)
	return vk.Device(p), err
}

func (f *fakeDriver) DestroyDevice(device vk.Device) {
	f.destroy(ObjectDevice, unsafe.Pointer(device))
}

func (f *fakeDriver) DeviceWaitIdle(device vk.Device) error {
	f.commands = append(f.commands, "wait idle")
	return nil
}

func (f *fakeDriver) DeviceQueue(device vk.Device, family, index uint32) vk.Queue {
	f.queues = append(f.queues, [2]uint32{family, index})
	return vk.Queue(f.pointer())
}

func (f *fakeDriver) CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	f.swapchainInfo = info
	p, err := f.create(ObjectSwapchain)
	return vk.Swapchain(p), err
}

func (f *fakeDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	f.destroy(ObjectSwapchain, unsafe.Pointer(swapchain))
}

func (f *fakeDriver) SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error) {
	images := make([]vk.Image, f.imageCount)
	for idx := range images {
		images[idx] = vk.Image(f.pointer())
	}
	return images, nil
}

func (f *fakeDriver) CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	p, err := f.create(ObjectImageView)
	return vk.ImageView(p), err
}

func (f *fakeDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	f.destroy(ObjectImageView, unsafe.Pointer(view))
}

func (f *fakeDriver) CreateShaderModule(device vk.Device, info *vk.ShaderModuleCreateInfo) (vk.ShaderModule, error) {
	p, err := f.create(ObjectShaderModule)
	return vk.ShaderModule(p), err
}

func (f *fakeDriver) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {
	f.destroy(ObjectShaderModule, unsafe.Pointer(module))
}

func (f *fakeDriver) CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error) {
	p, err := f.create(ObjectPipelineLayout)
	return vk.PipelineLayout(p), err
}

func (f *fakeDriver) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	f.destroy(ObjectPipelineLayout, unsafe.Pointer(layout))
}

func (f *fakeDriver) CreateRenderPass(device vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	f.renderPass = info
	p, err := f.create(ObjectRenderPass)
	return vk.RenderPass(p), err
}

func (f *fakeDriver) DestroyRenderPass(device vk.Device, renderPass vk.RenderPass) {
	f.destroy(ObjectRenderPass, unsafe.Pointer(renderPass))
}

func (f *fakeDriver) CreateGraphicsPipeline(device vk.Device, info *vk.GraphicsPipelineCreateInfo) (vk.Pipeline, error) {
	f.pipelineInfo = info
	p, err := f.create(ObjectPipeline)
	return vk.Pipeline(p), err
}

func (f *fakeDriver) DestroyPipeline(device vk.Device, pipeline vk.Pipeline) {
	f.destroy(ObjectPipeline, unsafe.Pointer(pipeline))
}

func (f *fakeDriver) CreateFramebuffer(device vk.Device, info *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	p, err := f.create(ObjectFramebuffer)
	if err == nil {
		f.framebuffers = append(f.framebuffers, *info)
	}
	return vk.Framebuffer(p), err
}

func (f *fakeDriver) DestroyFramebuffer(device vk.Device, framebuffer vk.Framebuffer) {
	f.destroy(ObjectFramebuffer, unsafe.Pointer(framebuffer))
}

func (f *fakeDriver) CreateCommandPool(device vk.Device, info *vk.CommandPoolCreateInfo) (vk.CommandPool, error) {
	f.poolInfo = info
	p, err := f.create(ObjectCommandPool)
	return vk.CommandPool(p), err
}

func (f *fakeDriver) DestroyCommandPool(device vk.Device, pool vk.CommandPool) {
	f.destroy(ObjectCommandPool, unsafe.Pointer(pool))
}

func (f *fakeDriver) AllocateCommandBuffer(device vk.Device, info *vk.CommandBufferAllocateInfo) (vk.CommandBuffer, error) {
	p, err := f.create(ObjectCommandBuffer)
	return vk.CommandBuffer(p), err
}

func (f *fakeDriver) CreateSemaphore(device vk.Device, info *vk.SemaphoreCreateInfo) (vk.Semaphore, error) {
	p, err := f.create(ObjectSemaphore)
	return vk.Semaphore(p), err
}

func (f *fakeDriver) DestroySemaphore(device vk.Device, semaphore vk.Semaphore) {
	f.destroy(ObjectSemaphore, unsafe.Pointer(semaphore))
}

func (f *fakeDriver) CreateFence(device vk.Device, info *vk.FenceCreateInfo) (vk.Fence, error) {
	f.fenceInfo = info
	p, err := f.create(ObjectFence)
	if err != nil {
		return vk.NullFence, err
	}
	fence := vk.Fence(p)
	f.signalled[fence] = info.Flags&vk.FenceCreateFlags(vk.FenceCreateSignaledBit) != 0
	return fence, nil
}

func (f *fakeDriver) DestroyFence(device vk.Device, fence vk.Fence) {
	f.destroy(ObjectFence, unsafe.Pointer(fence))
}

// WaitForFence fails instead of blocking forever on an unsignalled fence.
func (f *fakeDriver) WaitForFence(device vk.Device, fence vk.Fence, timeout uint64) error {
	if err := f.failOp[OpWait]; err != nil {
		return err
	}
	if !f.signalled[fence] {
		return errors.New("fake: waiting on a fence that is never signalled")
	}
	f.commands = append(f.commands, "wait fence")
	return nil
}

func (f *fakeDriver) ResetFence(device vk.Device, fence vk.Fence) error {
	f.signalled[fence] = false
	f.commands = append(f.commands, "reset fence")
	return nil
}

func (f *fakeDriver) AcquireNextImage(device vk.Device, swapchain vk.Swapchain, timeout uint64, signal vk.Semaphore) (uint32, error) {
	if err := f.failOp[OpAcquire]; err != nil {
		return 0, err
	}
	idx := f.nextImage
	f.nextImage = (f.nextImage + 1) % uint32(f.imageCount)
	f.commands = append(f.commands, fmt.Sprintf("acquire %d", idx))
	return idx, nil
}

// QueueSubmit completes the work at once and signals the fence.
func (f *fakeDriver) QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) error {
	if err := f.failOp[OpSubmit]; err != nil {
		return err
	}
	f.submits = append(f.submits, submits)
	f.signalled[fence] = true
	f.commands = append(f.commands, "submit")
	return nil
}

func (f *fakeDriver) QueuePresent(queue vk.Queue, info *vk.PresentInfo) error {
	if err := f.failOp[OpPresent]; err != nil {
		return err
	}
	f.presents = append(f.presents, *info)
	f.commands = append(f.commands, "present")
	return nil
}

func (f *fakeDriver) ResetCommandBuffer(buffer vk.CommandBuffer) error {
	f.commands = append(f.commands, "reset buffer")
	return nil
}

func (f *fakeDriver) BeginCommandBuffer(buffer vk.CommandBuffer, info *vk.CommandBufferBeginInfo) error {
	f.commands = append(f.commands, fmt.Sprintf("begin buffer flags=%d inheritance=%t", info.Flags, info.PInheritanceInfo != nil))
	return nil
}

func (f *fakeDriver) EndCommandBuffer(buffer vk.CommandBuffer) error {
	f.commands = append(f.commands, "end buffer")
	return nil
}

func (f *fakeDriver) CmdBeginRenderPass(buffer vk.CommandBuffer, info *vk.RenderPassBeginInfo) {
	f.commands = append(f.commands, fmt.Sprintf("begin render pass %d on framebuffer %d area %dx%d clears=%d",
		f.id(unsafe.Pointer(info.RenderPass)), f.id(unsafe.Pointer(info.Framebuffer)),
		info.RenderArea.Extent.Width, info.RenderArea.Extent.Height, info.ClearValueCount))
}

func (f *fakeDriver) CmdBindPipeline(buffer vk.CommandBuffer, pipeline vk.Pipeline) {
	f.commands = append(f.commands, fmt.Sprintf("bind pipeline %d", f.id(unsafe.Pointer(pipeline))))
}

func (f *fakeDriver) CmdSetViewport(buffer vk.CommandBuffer, viewport vk.Viewport) {
	f.commands = append(f.commands, fmt.Sprintf("viewport %g,%g %gx%g depth %g-%g",
		viewport.X, viewport.Y, viewport.Width, viewport.Height, viewport.MinDepth, viewport.MaxDepth))
}

func (f *fakeDriver) CmdSetScissor(buffer vk.CommandBuffer, scissor vk.Rect2D) {
	f.commands = append(f.commands, fmt.Sprintf("scissor %d,%d %dx%d",
		scissor.Offset.X, scissor.Offset.Y, scissor.Extent.Width, scissor.Extent.Height))
}

func (f *fakeDriver) CmdDraw(buffer vk.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	f.commands = append(f.commands, fmt.Sprintf("draw %d %d %d %d", vertexCount, instanceCount, firstVertex, firstInstance))
}

func (f *fakeDriver) CmdEndRenderPass(buffer vk.CommandBuffer) {
	f.commands = append(f.commands, "end render pass")
}

type fakeWindow struct {
	drv        *fakeDriver
	width      uint32
	height     uint32
	closeAfter int
	polls      int
}

func (w *fakeWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	p, err := w.drv.create(ObjectSurface)
	return vk.Surface(p), err
}

func (w *fakeWindow) FramebufferSize() (uint32, uint32) {
	return w.width, w.height
}

func (w *fakeWindow) PollEvents() {
	w.polls++
}

func (w *fakeWindow) ShouldClose() bool {
	return w.polls > w.closeAfter
}

type fakeShaders map[string][]byte

func (s fakeShaders) Bytecode(name string) ([]byte, error) {
	code, ok := s[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return code, nil
}

func triangleShaders() fakeShaders {
	return fakeShaders{
		"vert.spv": {0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0},
		"frag.spv": {0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0},
	}
}
