// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import vk "github.com/vulkan-go/vulkan"

// FrameSync coordinates the single frame in flight.
type FrameSync struct {
	drv    Driver
	device vk.Device

	ImageAvailable vk.Semaphore
	RenderFinished vk.Semaphore
	InFlight       vk.Fence
}

// CreateSyncObjects creates both semaphores and the in flight fence. The fence
// starts signalled so the first frame does not wait.
func CreateSyncObjects(drv Driver, device vk.Device) (*FrameSync, error) {
	s := &FrameSync{
		drv:    drv,
		device: device,
	}

	sci := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	fci := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}

	var err error
	if s.ImageAvailable, err = drv.CreateSemaphore(device, &sci); err != nil {
		return nil, creationError(ObjectSemaphore, err)
	}
	if s.RenderFinished, err = drv.CreateSemaphore(device, &sci); err != nil {
		s.Release()
		return nil, creationError(ObjectSemaphore, err)
	}
	if s.InFlight, err = drv.CreateFence(device, &fci); err != nil {
		s.Release()
		return nil, creationError(ObjectFence, err)
	}
	return s, nil
}

// Release destroys the fence and semaphores that were created.
func (s *FrameSync) Release() {
	if s.InFlight != vk.NullFence {
		s.drv.DestroyFence(s.device, s.InFlight)
		s.InFlight = vk.NullFence
	}
	if s.RenderFinished != vk.NullSemaphore {
		s.drv.DestroySemaphore(s.device, s.RenderFinished)
		s.RenderFinished = vk.NullSemaphore
	}
	if s.ImageAvailable != vk.NullSemaphore {
		s.drv.DestroySemaphore(s.device, s.ImageAvailable)
		s.ImageAvailable = vk.NullSemaphore
	}
}
