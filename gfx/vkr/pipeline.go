// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import vk "github.com/vulkan-go/vulkan"

// FixedFunctionState is the fixed-function description the pipeline is built from.
type FixedFunctionState struct {
	Topology      vk.PrimitiveTopology
	ViewportCount uint32
	ScissorCount  uint32
	PolygonMode   vk.PolygonMode
	CullMode      vk.CullModeFlags
	FrontFace     vk.FrontFace
	Samples       vk.SampleCountFlagBits
	BlendEnable   bool
}

// TriangleState draws filled, back-face culled triangles with alpha blending.
// Viewport and scissor are dynamic.
var TriangleState = FixedFunctionState{
	Topology:      vk.PrimitiveTopologyTriangleList,
	ViewportCount: 1,
	ScissorCount:  1,
	PolygonMode:   vk.PolygonModeFill,
	CullMode:      vk.CullModeFlags(vk.CullModeBackBit),
	FrontFace:     vk.FrontFaceClockwise,
	Samples:       vk.SampleCount1Bit,
	BlendEnable:   true,
}

// Pipeline owns the render pass, the pipeline layout and the graphics pipeline.
type Pipeline struct {
	drv    Driver
	device vk.Device

	Layout     vk.PipelineLayout
	RenderPass vk.RenderPass
	Handle     vk.Pipeline
	Format     vk.Format
	State      FixedFunctionState
}

// BuildPipeline creates the pipeline layout, a single subpass render pass on
// format, the shader modules named in cfg and the graphics pipeline, in that
// order. Shader modules do not outlive this call.
func BuildPipeline(drv Driver, device vk.Device, format vk.Format, shaders ShaderSource, cfg Configuration) (*Pipeline, error) {
	p := &Pipeline{
		drv:    drv,
		device: device,
		Format: format,
		State:  TriangleState,
	}

	plci := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}
	layout, err := drv.CreatePipelineLayout(device, &plci)
	if err != nil {
		return nil, creationError(ObjectPipelineLayout, err)
	}
	p.Layout = layout

	rpci := renderPassCreateInfo(format)
	renderPass, err := drv.CreateRenderPass(device, &rpci)
	if err != nil {
		p.Release()
		return nil, creationError(ObjectRenderPass, err)
	}
	p.RenderPass = renderPass

	modules, stages, err := loadShaderStages(drv, device, shaders, []shaderStage{
		{name: cfg.VertexShader, stage: vk.ShaderStageVertexBit},
		{name: cfg.FragmentShader, stage: vk.ShaderStageFragmentBit},
	})
	if err != nil {
		p.Release()
		return nil, err
	}

	gpci := graphicsPipelineCreateInfo(p.State, stages, layout, renderPass)
	pipeline, err := drv.CreateGraphicsPipeline(device, &gpci)
	destroyShaderModules(drv, device, modules)
	if err != nil {
		p.Release()
		return nil, creationError(ObjectPipeline, err)
	}
	p.Handle = pipeline

	log("pipeline").WithField("format", format).Debug("graphics pipeline created")
	return p, nil
}

func renderPassCreateInfo(format vk.Format) vk.RenderPassCreateInfo {
	attachments := []vk.AttachmentDescription{{
		Format:         format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}

	colorAttachmentRef := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorAttachmentRef)),
		PColorAttachments:    colorAttachmentRef,
	}

	subpassDependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	return vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{subpassDependency},
	}
}

func graphicsPipelineCreateInfo(state FixedFunctionState, stages []vk.PipelineShaderStageCreateInfo,
	layout vk.PipelineLayout, renderPass vk.RenderPass) vk.GraphicsPipelineCreateInfo {
	blendEnable := vk.Bool32(vk.False)
	if state.BlendEnable {
		blendEnable = vk.True
	}

	return vk.GraphicsPipelineCreateInfo{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(stages)),
		PStages:    stages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology:               state.Topology,
			PrimitiveRestartEnable: vk.False,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: state.ViewportCount,
			ScissorCount:  state.ScissorCount,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
			DepthClampEnable:        vk.False,
			RasterizerDiscardEnable: vk.False,
			PolygonMode:             state.PolygonMode,
			CullMode:                state.CullMode,
			FrontFace:               state.FrontFace,
			DepthBiasEnable:         vk.False,
			LineWidth:               1.0,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: state.Samples,
			SampleShadingEnable:  vk.False,
			MinSampleShading:     1.0,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			LogicOpEnable:   vk.False,
			LogicOp:         vk.LogicOpCopy,
			AttachmentCount: 1,
			PAttachments: []vk.PipelineColorBlendAttachmentState{{
				BlendEnable:         blendEnable,
				SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
				DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
				ColorBlendOp:        vk.BlendOpAdd,
				SrcAlphaBlendFactor: vk.BlendFactorOne,
				DstAlphaBlendFactor: vk.BlendFactorZero,
				AlphaBlendOp:        vk.BlendOpAdd,
				ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
					vk.ColorComponentBBit | vk.ColorComponentABit),
			}},
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: 2,
			PDynamicStates: []vk.DynamicState{
				vk.DynamicStateViewport,
				vk.DynamicStateScissor,
			},
		},
		Layout:            layout,
		RenderPass:        renderPass,
		Subpass:           0,
		BasePipelineIndex: -1,
	}
}

// Release destroys the pipeline, render pass and layout, skipping
// any that were never created.
func (p *Pipeline) Release() {
	if p.Handle != vk.NullPipeline {
		p.drv.DestroyPipeline(p.device, p.Handle)
		p.Handle = vk.NullPipeline
	}
	if p.RenderPass != vk.NullRenderPass {
		p.drv.DestroyRenderPass(p.device, p.RenderPass)
		p.RenderPass = vk.NullRenderPass
	}
	if p.Layout != vk.NullPipelineLayout {
		p.drv.DestroyPipelineLayout(p.device, p.Layout)
		p.Layout = vk.NullPipelineLayout
	}
}
