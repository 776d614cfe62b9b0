package gpu

import (
	"fmt"

	"github.com/retrofx/slangchain/texture"
)

// stubFence is an already-signaled fence; Wait is a no-op.
type stubFence struct{}

func (stubFence) Wait() {}

// Call records one intercepted Device method invocation, for assertions in
// tests that drive a chain.Chain without a real backend.
type Call struct {
	Method string
	Args   []interface{}
}

// StubDevice is an all-methods-present, zero-value-returning Device
// implementation that records every call it receives. It is the direct
// analogue of the teacher's engine/renderer/renderer.go Renderer, whose
// TextureCreate/ShaderCreate/RenderBufferCreate/... methods are empty
// stubs returning zero values pending a real backend. Here that same shape
// serves as a test double driving the chain end-to-end without a GPU:
// drawing into a StubDevice records the call and leaves the target
// untouched. The chain's failed-state passthrough does not use it; it draws
// with its passthroughPipeline handle on whatever Device it was built with.
type StubDevice struct {
	Calls   []Call
	nextPip PipelineHandle
	cleared map[texture.Handle]bool
}

// NewStubDevice returns a ready-to-use StubDevice.
func NewStubDevice() *StubDevice {
	return &StubDevice{cleared: make(map[texture.Handle]bool)}
}

func (d *StubDevice) record(method string, args ...interface{}) {
	d.Calls = append(d.Calls, Call{Method: method, Args: args})
}

func (d *StubDevice) CreateTexture(desc texture.Descriptor) error {
	d.record("CreateTexture", desc)
	return nil
}

func (d *StubDevice) DestroyTexture(h texture.Handle) {
	d.record("DestroyTexture", h)
}

func (d *StubDevice) ResizeTexture(h texture.Handle, width, height int) error {
	d.record("ResizeTexture", h, width, height)
	return nil
}

func (d *StubDevice) ClearTexture(h texture.Handle) {
	d.record("ClearTexture", h)
	if d.cleared != nil {
		d.cleared[h] = true
	}
}

// WasCleared reports whether ClearTexture was ever called for h (used by
// tests asserting the first-frame all-zero feedback contents decided in
// spec §9 Design Notes).
func (d *StubDevice) WasCleared(h texture.Handle) bool {
	return d.cleared[h]
}

func (d *StubDevice) CreatePipeline(vertexSrc, fragmentSrc string, outputFormat texture.PixelFormat) (PipelineHandle, error) {
	d.record("CreatePipeline", outputFormat)
	d.nextPip++
	return d.nextPip, nil
}

func (d *StubDevice) DestroyPipeline(p PipelineHandle) {
	d.record("DestroyPipeline", p)
}

func (d *StubDevice) AcquireStagingSlice(size uint64) ([]byte, Fence) {
	d.record("AcquireStagingSlice", size)
	return make([]byte, size), stubFence{}
}

func (d *StubDevice) BeginCommandBuffer() CommandBuffer {
	d.record("BeginCommandBuffer")
	return struct{}{}
}

func (d *StubDevice) DrawFullscreenQuad(cmd CommandBuffer, p PipelineHandle, output texture.Handle, target RenderPassDescriptor, inputs []texture.Handle, uboOffset, pushOffset uint64) {
	d.record("DrawFullscreenQuad", p, output, target, inputs, uboOffset, pushOffset)
}

func (d *StubDevice) Submit(cmd CommandBuffer) Fence {
	d.record("Submit")
	return stubFence{}
}

func (d *StubDevice) BlitToReadback(h texture.Handle) ([]byte, error) {
	d.record("BlitToReadback", h)
	return nil, fmt.Errorf("stub device: no backing pixels for handle %d", h)
}
