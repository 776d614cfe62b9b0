// Package gpu defines the boundary between the core filter-chain engine
// and the concrete GPU API, which spec §1 explicitly keeps external
// ("the concrete GPU API (command buffers, texture and sampler objects,
// pipeline state)"). Device is that boundary; the teacher's
// engine/renderer/backend.go RendererBackend interface is the direct
// model for its shape.
package gpu

import "github.com/retrofx/slangchain/texture"

// PipelineHandle identifies a compiled, backend-resident pass pipeline
// (vertex+fragment stage pair bound to a render target format).
type PipelineHandle int

// CommandBuffer is an opaque handle to a backend command recording
// context; the core never inspects it, only threads it through Device
// calls in the order spec §4.F/§5 requires.
type CommandBuffer interface{}

// RenderPassDescriptor is the caller-supplied final render target (spec §6
// render_final_pass(encoder)); opaque to the core.
type RenderPassDescriptor interface{}

// Fence is the per-in-flight-frame synchronization primitive described in
// spec §5.
type Fence interface {
	Wait()
}

// Device is the full set of operations the filter chain needs from a GPU
// backend. A real implementation binds these to Vulkan/Metal/D3D calls; no
// such binding ships in this repository (spec §1's opaque-GPU boundary).
type Device interface {
	// CreateTexture allocates backing storage for an arena slot.
	CreateTexture(desc texture.Descriptor) error
	// DestroyTexture releases backing storage. Safe to call on an already
	// destroyed handle.
	DestroyTexture(h texture.Handle)
	// ResizeTexture reallocates backing storage in place (spec §4.F resize
	// event handling).
	ResizeTexture(h texture.Handle, width, height int) error
	// ClearTexture zero-fills a texture, used for the first-frame feedback
	// contents (spec §9 Design Notes). History ring slots own no texture and
	// are never cleared.
	ClearTexture(h texture.Handle)

	// CreatePipeline compiles cross-compiled target-language source for
	// both stages into a backend pipeline object bound to the given
	// output pixel format.
	CreatePipeline(vertexSrc, fragmentSrc string, outputFormat texture.PixelFormat) (PipelineHandle, error)
	// DestroyPipeline releases a pipeline created by CreatePipeline.
	DestroyPipeline(p PipelineHandle)

	// AcquireStagingSlice returns a device-visible memory region at least
	// size bytes long from the next slot of the triple-buffered uniform
	// ring (spec §5); the Fence signals when the GPU is done reading the
	// slot this slice came from on a previous cycle.
	AcquireStagingSlice(size uint64) ([]byte, Fence)

	// BeginCommandBuffer starts recording one frame's offscreen work.
	BeginCommandBuffer() CommandBuffer
	// DrawFullscreenQuad encodes a render pass into output (or, when
	// target is non-nil, into the caller's final render-pass descriptor)
	// using pipeline p, the staged uniform bytes at the given offsets,
	// and the bound input textures.
	DrawFullscreenQuad(cmd CommandBuffer, p PipelineHandle, output texture.Handle, target RenderPassDescriptor, inputs []texture.Handle, uboOffset, pushOffset uint64)
	// Submit finalizes and submits a command buffer, returning a Fence
	// signaled on GPU completion.
	Submit(cmd CommandBuffer) Fence

	// BlitToReadback copies h into a CPU-visible buffer and blocks until
	// the copy completes, for CaptureSourceImage/CaptureOutputImage (spec
	// §6/§5 "synchronously wait on the resulting fence").
	BlitToReadback(h texture.Handle) ([]byte, error)
}
