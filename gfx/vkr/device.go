// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// QueueFamilies holds the queue family indices the renderer submits and presents on.
type QueueFamilies struct {
	Graphics uint32
	Present  uint32
}

// Shared reports whether one family serves both roles.
func (q QueueFamilies) Shared() bool {
	return q.Graphics == q.Present
}

// Distinct returns the family indices without duplicates, graphics first.
func (q QueueFamilies) Distinct() []uint32 {
	if q.Shared() {
		return []uint32{q.Graphics}
	}
	return []uint32{q.Graphics, q.Present}
}

// DeviceInfo is the chosen physical device and what its surface offers.
// It is read-only after selection.
type DeviceInfo struct {
	PhysicalDevice vk.PhysicalDevice
	Name           string
	Families       QueueFamilies

	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// DeviceReport describes how one physical device fared against
// the renderer's requirements.
type DeviceReport struct {
	Name          string
	ID            int
	VendorID      int
	DriverVersion int
	Memory        uint64
	Extensions    []string

	Families          QueueFamilies
	HasQueueFamilies  bool
	MissingExtensions []string
	FormatCount       int
	PresentModeCount  int

	Suitable bool
	Error    string `json:",omitempty"`
}

type candidate struct {
	info   DeviceInfo
	report DeviceReport
}

// SelectDevice returns the first physical device, in enumeration order, that
// has graphics and present queue families, supports every required extension
// and reports at least one surface format and present mode.
func SelectDevice(drv Driver, instance vk.Instance, surface vk.Surface, requiredExtensions []string) (*DeviceInfo, error) {
	devices, err := drv.EnumeratePhysicalDevices(instance)
	if err != nil {
		return nil, errors.Wrap(ErrNoSuitableDevice, err.Error())
	}

	for idx, pd := range devices {
		c := evaluateDevice(drv, pd, surface, requiredExtensions)
		if c.report.Error != "" {
			log("selector").WithField("device", idx).Warnf("skipping %q: %s", c.report.Name, c.report.Error)
			continue
		}
		if !c.report.Suitable {
			log("selector").WithField("device", idx).Debugf("%q is not suitable", c.report.Name)
			continue
		}

		log("selector").WithFields(map[string]interface{}{
			"device":   c.info.Name,
			"graphics": c.info.Families.Graphics,
			"present":  c.info.Families.Present,
		}).Info("selected physical device")
		return &c.info, nil
	}

	return nil, errors.Wrapf(ErrNoSuitableDevice, "%d devices examined", len(devices))
}

// InspectDevices evaluates every physical device without choosing one.
func InspectDevices(drv Driver, instance vk.Instance, surface vk.Surface, requiredExtensions []string) ([]DeviceReport, error) {
	devices, err := drv.EnumeratePhysicalDevices(instance)
	if err != nil {
		return nil, err
	}

	reports := make([]DeviceReport, 0, len(devices))
	for _, pd := range devices {
		c := evaluateDevice(drv, pd, surface, requiredExtensions)
		reports = append(reports, c.report)
	}
	return reports, nil
}

func evaluateDevice(drv Driver, pd vk.PhysicalDevice, surface vk.Surface, requiredExtensions []string) candidate {
	properties := drv.PhysicalDeviceProperties(pd)
	c := candidate{
		report: DeviceReport{
			Name:          vk.ToString(properties.DeviceName[:]),
			ID:            int(properties.DeviceID),
			VendorID:      int(properties.VendorID),
			DriverVersion: int(properties.DriverVersion),
			Memory:        drv.PhysicalDeviceMemory(pd),
		},
	}
	c.info.PhysicalDevice = pd
	c.info.Name = c.report.Name

	families, found, err := findQueueFamilies(drv, pd, surface)
	if err != nil {
		c.report.Error = err.Error()
		return c
	}
	c.info.Families = families
	c.report.Families = families
	c.report.HasQueueFamilies = found

	extensions, err := drv.DeviceExtensions(pd)
	if err != nil {
		c.report.Error = err.Error()
		return c
	}
	c.report.Extensions = extensions
	c.report.MissingExtensions = missingExtensions(extensions, requiredExtensions)

	if c.info.Capabilities, err = drv.SurfaceCapabilities(pd, surface); err != nil {
		c.report.Error = err.Error()
		return c
	}
	if c.info.Formats, err = drv.SurfaceFormats(pd, surface); err != nil {
		c.report.Error = err.Error()
		return c
	}
	if c.info.PresentModes, err = drv.SurfacePresentModes(pd, surface); err != nil {
		c.report.Error = err.Error()
		return c
	}
	c.report.FormatCount = len(c.info.Formats)
	c.report.PresentModeCount = len(c.info.PresentModes)

	c.report.Suitable = found &&
		len(c.report.MissingExtensions) == 0 &&
		c.report.FormatCount > 0 &&
		c.report.PresentModeCount > 0
	return c
}

// findQueueFamilies searches the graphics and present families independently,
// each one settles on the first family that qualifies.
func findQueueFamilies(drv Driver, pd vk.PhysicalDevice, surface vk.Surface) (QueueFamilies, bool, error) {
	var (
		families                    QueueFamilies
		graphicsFound, presentFound bool
	)

	for idx, family := range drv.QueueFamilyProperties(pd) {
		index := uint32(idx)
		if !graphicsFound && family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			families.Graphics = index
			graphicsFound = true
		}

		if !presentFound {
			supported, err := drv.SurfaceSupport(pd, index, surface)
			if err != nil {
				return QueueFamilies{}, false, err
			}
			if supported {
				families.Present = index
				presentFound = true
			}
		}

		if graphicsFound && presentFound {
			break
		}
	}
	return families, graphicsFound && presentFound, nil
}

func missingExtensions(available, required []string) []string {
	supported := make(map[string]struct{}, len(available))
	for _, name := range available {
		supported[trimNull(name)] = struct{}{}
	}

	var missing []string
	for _, name := range required {
		if _, ok := supported[trimNull(name)]; !ok {
			missing = append(missing, trimNull(name))
		}
	}
	return missing
}

// DeviceContext owns the logical device and its queues.
type DeviceContext struct {
	drv Driver

	Device        vk.Device
	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue
	Families      QueueFamilies
}

// CreateLogicalDevice opens pd with one queue per distinct family and
// enables requiredExtensions. No device features are requested.
func CreateLogicalDevice(drv Driver, pd vk.PhysicalDevice, families QueueFamilies, requiredExtensions []string) (*DeviceContext, error) {
	queueInfos := deviceQueueCreateInfos(families)
	extensions := safeStrings(requiredExtensions)

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	device, err := drv.CreateDevice(pd, &dci)
	if err != nil {
		return nil, creationError(ObjectDevice, err)
	}

	return &DeviceContext{
		drv:           drv,
		Device:        device,
		GraphicsQueue: drv.DeviceQueue(device, families.Graphics, 0),
		PresentQueue:  drv.DeviceQueue(device, families.Present, 0),
		Families:      families,
	}, nil
}

func deviceQueueCreateInfos(families QueueFamilies) []vk.DeviceQueueCreateInfo {
	distinct := families.Distinct()
	infos := make([]vk.DeviceQueueCreateInfo, 0, len(distinct))
	for _, family := range distinct {
		infos = append(infos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}
	return infos
}

// WaitIdle blocks until the device has finished all submitted work.
func (d *DeviceContext) WaitIdle() error {
	return d.drv.DeviceWaitIdle(d.Device)
}

// Release destroys the logical device.
func (d *DeviceContext) Release() {
	d.drv.DestroyDevice(d.Device)
}
