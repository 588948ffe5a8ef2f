// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"errors"
	"fmt"
)

// ErrNoSuitableDevice is wrapped by every device selection failure.
var ErrNoSuitableDevice = errors.New("no physical device satisfies queue, extension and swapchain requirements")

// ErrBytecodeSize is wrapped in a ShaderLoadError when a shader is not
// made of whole 32-bit words.
var ErrBytecodeSize = errors.New("shader bytecode is not a whole number of 32-bit words")

// Object names a kind of GPU object the renderer creates.
type Object string

// Objects created during initialisation, in creation order.
const (
	ObjectInstance       Object = "instance"
	ObjectSurface        Object = "surface"
	ObjectDevice         Object = "logical device"
	ObjectSwapchain      Object = "swapchain"
	ObjectImageView      Object = "image view"
	ObjectPipelineLayout Object = "pipeline layout"
	ObjectRenderPass     Object = "render pass"
	ObjectShaderModule   Object = "shader module"
	ObjectPipeline       Object = "graphics pipeline"
	ObjectFramebuffer    Object = "framebuffer"
	ObjectCommandPool    Object = "command pool"
	ObjectCommandBuffer  Object = "command buffer"
	ObjectSemaphore      Object = "semaphore"
	ObjectFence          Object = "fence"
)

// CreationError is returned when a GPU object could not be created.
type CreationError struct {
	Object Object
	Err    error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("create %s: %s", e.Object, e.Err.Error())
}

// Unwrap returns the driver error.
func (e *CreationError) Unwrap() error {
	return e.Err
}

func creationError(object Object, err error) error {
	return &CreationError{Object: object, Err: err}
}

// ShaderLoadError is returned when shader bytecode could not be read.
type ShaderLoadError struct {
	Name string
	Err  error
}

func (e *ShaderLoadError) Error() string {
	return fmt.Sprintf("load shader %q: %s", e.Name, e.Err.Error())
}

// Unwrap returns the source error.
func (e *ShaderLoadError) Unwrap() error {
	return e.Err
}

// Frame operations that can fail while the loop is running.
const (
	OpWait    = "wait"
	OpReset   = "reset"
	OpAcquire = "acquire"
	OpRecord  = "record"
	OpSubmit  = "submit"
	OpPresent = "present"
)

// SubmissionError is returned by the frame loop. Every SubmissionError is
// fatal, including out-of-date surfaces.
type SubmissionError struct {
	Op  string
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("frame %s: %s", e.Op, e.Err.Error())
}

// Unwrap returns the driver error.
func (e *SubmissionError) Unwrap() error {
	return e.Err
}
