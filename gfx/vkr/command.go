// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
)

// TriangleVertexCount is the number of vertices drawn each frame. The vertex
// shader emits them itself, there is no vertex input.
const TriangleVertexCount = 3

// CommandExecutor owns a command pool and the single command buffer
// that is reset and re-recorded every frame.
type CommandExecutor struct {
	drv    Driver
	device vk.Device

	Pool       vk.CommandPool
	Buffer     vk.CommandBuffer
	ClearColor mgl32.Vec4
}

// CreateCommandResources creates a resettable pool on the graphics family and
// allocates one primary buffer from it.
func CreateCommandResources(drv Driver, device vk.Device, graphicsFamily uint32) (*CommandExecutor, error) {
	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: graphicsFamily,
	}
	pool, err := drv.CreateCommandPool(device, &cpci)
	if err != nil {
		return nil, creationError(ObjectCommandPool, err)
	}

	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	buffer, err := drv.AllocateCommandBuffer(device, &cbai)
	if err != nil {
		drv.DestroyCommandPool(device, pool)
		return nil, creationError(ObjectCommandBuffer, err)
	}

	return &CommandExecutor{
		drv:        drv,
		device:     device,
		Pool:       pool,
		Buffer:     buffer,
		ClearColor: mgl32.Vec4{0, 0, 0, 1},
	}, nil
}

// RecordFrame resets the command buffer and records one render pass on
// framebuffer that clears it and draws the triangle over the full extent.
func (c *CommandExecutor) RecordFrame(framebuffer vk.Framebuffer, renderPass vk.RenderPass, pipeline vk.Pipeline, extent vk.Extent2D) error {
	if err := c.drv.ResetCommandBuffer(c.Buffer); err != nil {
		return err
	}

	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if err := c.drv.BeginCommandBuffer(c.Buffer, &cbbi); err != nil {
		return err
	}

	clearValues := make([]vk.ClearValue, 1)
	clearValues[0].SetColor(c.ClearColor[:])

	renderArea := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}

	rpbi := vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      renderPass,
		Framebuffer:     framebuffer,
		RenderArea:      renderArea,
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}

	c.drv.CmdBeginRenderPass(c.Buffer, &rpbi)
	c.drv.CmdBindPipeline(c.Buffer, pipeline)
	c.drv.CmdSetViewport(c.Buffer, vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	})
	c.drv.CmdSetScissor(c.Buffer, renderArea)
	c.drv.CmdDraw(c.Buffer, TriangleVertexCount, 1, 0, 0)
	c.drv.CmdEndRenderPass(c.Buffer)

	return c.drv.EndCommandBuffer(c.Buffer)
}

// Release destroys the pool, which frees the command buffer with it.
func (c *CommandExecutor) Release() {
	c.drv.DestroyCommandPool(c.device, c.Pool)
}
