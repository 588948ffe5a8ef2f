// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import vk "github.com/vulkan-go/vulkan"

// ShaderSource provides compiled SPIR-V bytecode by name.
type ShaderSource interface {
	Bytecode(name string) ([]byte, error)
}

const shaderEntryPoint = "main\x00"

type shaderStage struct {
	name  string
	stage vk.ShaderStageFlagBits
}

// loadShaderModule reads the whole blob and hands it to the driver as is.
// Only its length is checked.
func loadShaderModule(drv Driver, device vk.Device, src ShaderSource, name string) (vk.ShaderModule, error) {
	code, err := src.Bytecode(name)
	if err != nil {
		return vk.NullShaderModule, &ShaderLoadError{Name: name, Err: err}
	}
	if len(code) < 4 || len(code)%4 != 0 {
		return vk.NullShaderModule, &ShaderLoadError{Name: name, Err: ErrBytecodeSize}
	}

	smci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    SliceUint32(code),
	}

	module, err := drv.CreateShaderModule(device, &smci)
	if err != nil {
		return vk.NullShaderModule, creationError(ObjectShaderModule, err)
	}
	log("shader").WithField("name", name).Debugf("shader module created from %d bytes", len(code))
	return module, nil
}

// loadShaderStages creates one module per stage. On failure the modules
// already created are destroyed.
func loadShaderStages(drv Driver, device vk.Device, src ShaderSource, stages []shaderStage) ([]vk.ShaderModule, []vk.PipelineShaderStageCreateInfo, error) {
	modules := make([]vk.ShaderModule, 0, len(stages))
	infos := make([]vk.PipelineShaderStageCreateInfo, 0, len(stages))

	for _, s := range stages {
		module, err := loadShaderModule(drv, device, src, s.name)
		if err != nil {
			destroyShaderModules(drv, device, modules)
			return nil, nil, err
		}
		modules = append(modules, module)
		infos = append(infos, vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  s.stage,
			Module: module,
			PName:  shaderEntryPoint,
		})
	}
	return modules, infos, nil
}

func destroyShaderModules(drv Driver, device vk.Device, modules []vk.ShaderModule) {
	for idx := len(modules) - 1; idx >= 0; idx-- {
		drv.DestroyShaderModule(device, modules[idx])
	}
}
