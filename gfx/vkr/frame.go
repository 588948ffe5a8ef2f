// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"context"
	"fmt"
	"time"

	"github.com/devblok/prism/gfx"
	vk "github.com/vulkan-go/vulkan"
)

// FrameState is where the frame loop is within an iteration.
type FrameState int

// Frame loop states. An iteration moves from FrameIdle through to
// FramePresenting and back to FrameIdle.
const (
	FrameIdle FrameState = iota
	FrameAcquiring
	FrameRecording
	FrameSubmitted
	FramePresenting
	FrameStopped
)

func (s FrameState) String() string {
	switch s {
	case FrameIdle:
		return "idle"
	case FrameAcquiring:
		return "acquiring"
	case FrameRecording:
		return "recording"
	case FrameSubmitted:
		return "submitted"
	case FramePresenting:
		return "presenting"
	case FrameStopped:
		return "stopped"
	default:
		return fmt.Sprintf("FrameState(%d)", int(s))
	}
}

// FrameLoop draws frames with a single frame in flight. The fence wait at
// the start of each frame precedes any reuse of the command buffer.
type FrameLoop struct {
	drv          Driver
	device       *DeviceContext
	swapchain    *Swapchain
	pipeline     *Pipeline
	framebuffers *Framebuffers
	commands     *CommandExecutor
	sync         *FrameSync

	state  FrameState
	frames uint64
}

// NewFrameLoop creates a loop over already created resources.
func NewFrameLoop(drv Driver, device *DeviceContext, swapchain *Swapchain, pipeline *Pipeline,
	framebuffers *Framebuffers, commands *CommandExecutor, sync *FrameSync) *FrameLoop {
	return &FrameLoop{
		drv:          drv,
		device:       device,
		swapchain:    swapchain,
		pipeline:     pipeline,
		framebuffers: framebuffers,
		commands:     commands,
		sync:         sync,
		state:        FrameIdle,
	}
}

// State returns the current state of the loop.
func (l *FrameLoop) State() FrameState {
	return l.state
}

// Frames returns the number of frames presented.
func (l *FrameLoop) Frames() uint64 {
	return l.frames
}

func (l *FrameLoop) fail(op string, err error) error {
	l.state = FrameStopped
	return &SubmissionError{Op: op, Err: err}
}

// DrawFrame waits for the previous frame, then acquires, records, submits
// and presents one frame. Waits are unbounded.
func (l *FrameLoop) DrawFrame() error {
	if l.state == FrameStopped {
		return &SubmissionError{Op: OpWait, Err: fmt.Errorf("frame loop is stopped")}
	}
	device := l.device.Device

	l.state = FrameAcquiring
	if err := l.drv.WaitForFence(device, l.sync.InFlight, vk.MaxUint64); err != nil {
		return l.fail(OpWait, err)
	}
	if err := l.drv.ResetFence(device, l.sync.InFlight); err != nil {
		return l.fail(OpReset, err)
	}

	imageIndex, err := l.drv.AcquireNextImage(device, l.swapchain.Handle, vk.MaxUint64, l.sync.ImageAvailable)
	if err != nil {
		return l.fail(OpAcquire, err)
	}
	if int(imageIndex) >= len(l.framebuffers.Handles) {
		return l.fail(OpAcquire, fmt.Errorf("image index %d out of range of %d framebuffers", imageIndex, len(l.framebuffers.Handles)))
	}

	l.state = FrameRecording
	if err := l.commands.RecordFrame(l.framebuffers.Get(imageIndex), l.pipeline.RenderPass, l.pipeline.Handle, l.swapchain.Extent); err != nil {
		return l.fail(OpRecord, err)
	}

	submits := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{l.sync.ImageAvailable},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{l.commands.Buffer},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{l.sync.RenderFinished},
	}}
	if err := l.drv.QueueSubmit(l.device.GraphicsQueue, submits, l.sync.InFlight); err != nil {
		return l.fail(OpSubmit, err)
	}
	l.state = FrameSubmitted

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{l.sync.RenderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{l.swapchain.Handle},
		PImageIndices:      []uint32{imageIndex},
	}
	l.state = FramePresenting
	if err := l.drv.QueuePresent(l.device.PresentQueue, &presentInfo); err != nil {
		return l.fail(OpPresent, err)
	}

	l.frames++
	l.state = FrameIdle
	return nil
}

// Run polls window and draws frames until the window asks to close or ctx is
// done, then waits for the device to go idle. A non-nil pace channel gates
// every frame. ctx is only checked between frames.
func (l *FrameLoop) Run(ctx context.Context, window gfx.Window, pace <-chan time.Time) error {
	for {
		window.PollEvents()
		if window.ShouldClose() {
			break
		}

		if pace != nil {
			select {
			case <-ctx.Done():
				return l.stop()
			case <-pace:
			}
		} else if ctx.Err() != nil {
			return l.stop()
		}

		if err := l.DrawFrame(); err != nil {
			return err
		}
	}
	return l.stop()
}

func (l *FrameLoop) stop() error {
	l.state = FrameStopped
	log("frameloop").WithField("frames", l.frames).Info("frame loop stopped")
	return l.device.WaitIdle()
}
