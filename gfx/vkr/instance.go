// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import vk "github.com/vulkan-go/vulkan"

// applicationInfo describes the application to the driver, API 1.0.
func applicationInfo(cfg Configuration) *vk.ApplicationInfo {
	return &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         vk.MakeVersion(1, 0, 0),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		PApplicationName:   safeString(cfg.ApplicationName),
		PEngineName:        safeString(cfg.EngineName),
	}
}

// CreateInstance creates a Vulkan instance with the extensions the
// window requires. No layers are enabled.
func CreateInstance(drv Driver, cfg Configuration) (vk.Instance, error) {
	extensions := safeStrings(cfg.InstanceExtensions)
	ici := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        applicationInfo(cfg),
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	instance, err := drv.CreateInstance(&ici)
	if err != nil {
		return nil, creationError(ObjectInstance, err)
	}
	return instance, nil
}
