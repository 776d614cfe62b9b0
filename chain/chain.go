package chain

import (
	"image"

	"github.com/retrofx/slangchain/core"
	"github.com/retrofx/slangchain/crosscompile"
	"github.com/retrofx/slangchain/gpu"
	"github.com/retrofx/slangchain/imageconv"
	"github.com/retrofx/slangchain/preset"
	"github.com/retrofx/slangchain/semantics"
	"github.com/retrofx/slangchain/shader"
	"github.com/retrofx/slangchain/texture"
)

// SourceConverter is the CPU↔GPU pixel-format converter boundary spec §1
// names as an external collaborator ("the CPU↔GPU pixel-format converter
// for non-native source formats"); imageconv.Converter is the default,
// swappable implementation (SPEC_FULL.md §6).
type SourceConverter interface {
	Convert(img image.Image, format texture.PixelFormat) ([]byte, error)
}

// state is the chain's coarse lifecycle (spec §7): a fresh or
// device-lost chain serves neutral passthrough until set_shader succeeds
// again.
type state int

const (
	stateUninitialized state = iota
	stateReady
	stateFailed
)

// passthroughPipeline is the sentinel pipeline handle the chain draws with
// while uninitialized or failed: StubDevice-style backends treat any
// unrecognized handle as a no-op copy, which is exactly spec §7's required
// "neutral passthrough of the source texture".
const passthroughPipeline gpu.PipelineHandle = 0

// Chain is the Filter Chain (Component F, spec §4.F): the core execution
// engine driving one loaded SlangShader's texture graph and pipelines
// through a frame's offscreen passes and final pass. Grounded on the
// teacher's engine/systems/renderview.go RenderView, which owns the same
// shape of per-frame resource lifecycle (sized targets, pipelines, a
// draw loop) for a single concrete renderer instead of a shader chain.
//
// Not safe for concurrent use (spec §5): the caller serializes every
// set_*/render_* call on one Chain from a single goroutine.
type Chain struct {
	dev   gpu.Device
	arena *texture.Arena

	shader    *shader.SlangShader
	graph     *textureGraph
	pipelines []gpu.PipelineHandle
	lutTex    []texture.Handle
	converter SourceConverter

	state state

	sourceSize   Size
	sourceAspect float64
	drawableSize Size
	sizes        []Size

	sourceTex     texture.Handle
	sourceFlipped bool

	defaultFilter  texture.FilterMode
	frameDirection int32
	frameCount     uint32

	// frame* fields are valid between RenderOffscreenPasses and
	// RenderFinalPass for the frame currently in flight (spec §4.F step 1).
	frameStaging  []byte
	frameFence    gpu.Fence
	framePassBase []uint64

	// OnDeviceLoss is invoked when a per-frame GPU error forces the chain
	// into the failed state (spec §7: "reported via a device-loss
	// callback"). May be nil.
	OnDeviceLoss func(error)
}

// New builds a Chain bound to dev. No shader is loaded until SetShader
// succeeds; render calls made before then draw neutral passthrough.
func New(dev gpu.Device) *Chain {
	return &Chain{
		dev:            dev,
		arena:          texture.NewArena(64),
		converter:      imageconv.New(),
		defaultFilter:  texture.FilterLinear,
		frameDirection: 1,
	}
}

// SetSourceConverter overrides the default CPU pixel-format converter
// (spec §1: "only their interfaces to the core are specified", so a
// caller may swap in its own SourceConverter implementation).
func (c *Chain) SetSourceConverter(conv SourceConverter) {
	c.converter = conv
}

// ConvertSourceImage runs img through the chain's SourceConverter,
// targeting the byte layout pass 0 expects its Source texture in (or a
// generic default before any shader is loaded). Device has no
// upload-texture-data primitive of its own (spec §1 keeps "the concrete
// GPU API" opaque): the caller uploads the returned bytes into a
// texture.Handle through its own backend and passes that handle to
// SetSourceTexture.
func (c *Chain) ConvertSourceImage(img image.Image) ([]byte, texture.PixelFormat, error) {
	format := texture.FormatR8g8b8a8Unorm
	if c.shader != nil && len(c.shader.Passes) > 0 {
		format = c.shader.Passes[0].Format
	}
	px, err := c.converter.Convert(img, format)
	if err != nil {
		return nil, format, err
	}
	return px, format, nil
}

// SetShader loads a preset from path (spec §6 set_shader(url, options)).
// On failure the chain retains whatever shader was previously loaded and
// returns the error (spec §7: "Load-time errors ... are fatal to the
// load operation itself"); on success the previous shader's GPU resources
// are torn down and replaced.
func (c *Chain) SetShader(path string, opts shader.Options) error {
	sh, err := shader.Load(path, opts)
	if err != nil {
		return err
	}

	sizes := computeSizes(presetsOf(sh), c.sourceSize, c.drawableSize)
	graph, err := buildTextureGraph(c.dev, c.arena, sh, sizes)
	if err != nil {
		return err
	}
	pipelines, err := c.buildPipelines(sh)
	if err != nil {
		return err
	}
	lutTex, err := c.buildLUTs(sh)
	if err != nil {
		for _, p := range pipelines {
			c.dev.DestroyPipeline(p)
		}
		return err
	}

	c.destroyResources()
	c.shader = sh
	c.graph = graph
	c.pipelines = pipelines
	c.lutTex = lutTex
	c.sizes = sizes
	c.state = stateReady
	return nil
}

func presetsOf(sh *shader.SlangShader) []preset.Pass {
	out := make([]preset.Pass, len(sh.Passes))
	for i, p := range sh.Passes {
		out[i] = p.Preset
	}
	return out
}

func (c *Chain) buildPipelines(sh *shader.SlangShader) ([]gpu.PipelineHandle, error) {
	out := make([]gpu.PipelineHandle, len(sh.Passes))
	for i, p := range sh.Passes {
		h, err := c.dev.CreatePipeline(p.VertexSource, p.FragmentSource, p.Format)
		if err != nil {
			for _, created := range out[:i] {
				c.dev.DestroyPipeline(created)
			}
			return nil, core.NewPassError(core.ErrLink, i, p.Preset.Source, "pipeline build failed: %v", err)
		}
		out[i] = h
	}
	return out, nil
}

// buildLUTs allocates one arena slot per textures = NAME entry (spec §3
// ShaderLUT). Decoding the image file into pixels and uploading it is left
// to a CPU-side converter the Device boundary doesn't model (spec §1 keeps
// "the concrete GPU API" opaque); a real backend fills Width/Height in once
// it has decoded the file.
func (c *Chain) buildLUTs(sh *shader.SlangShader) ([]texture.Handle, error) {
	handles := make([]texture.Handle, len(sh.LUTs))
	for i, lut := range sh.LUTs {
		h := c.arena.Alloc(texture.Descriptor{
			Name:   lut.Name,
			Format: texture.FormatR8g8b8a8Unorm,
			Wrap:   lut.Wrap,
			Filter: lut.Filter,
			Mipmap: lut.Mipmap,
		})
		if err := c.dev.CreateTexture(*c.arena.Get(h)); err != nil {
			return nil, core.NewError(core.ErrImageCaptureFailed, lut.Path, "LUT texture creation failed: %v", err)
		}
		handles[i] = h
	}
	return handles, nil
}

func (c *Chain) destroyResources() {
	for _, p := range c.pipelines {
		c.dev.DestroyPipeline(p)
	}
	c.pipelines = nil
	for _, h := range c.lutTex {
		c.dev.DestroyTexture(h)
	}
	c.lutTex = nil
	if c.graph == nil {
		return
	}
	for _, h := range c.graph.passOutput {
		c.dev.DestroyTexture(h)
	}
	for _, h := range c.graph.feedback {
		c.dev.DestroyTexture(h)
	}
}

// SetSourceRect records the active source rectangle (spec §6
// set_source_rect) and reflows every Source/Viewport-scaled pass.
func (c *Chain) SetSourceRect(size Size, aspect float64) {
	c.sourceSize = size
	c.sourceAspect = aspect
	c.reflow()
}

// SetDrawableSize records the final render target's size (spec §6
// set_drawable_size) and reflows every Viewport-scaled pass plus the final
// pass itself.
func (c *Chain) SetDrawableSize(size Size) {
	c.drawableSize = size
	c.reflow()
}

func (c *Chain) reflow() {
	if c.shader == nil {
		return
	}
	sizes := computeSizes(presetsOf(c.shader), c.sourceSize, c.drawableSize)
	if c.graph != nil {
		if err := c.graph.resize(c.dev, sizes); err != nil {
			c.fail(err)
			return
		}
	}
	c.sizes = sizes
}

// SetSourceTexture binds this frame's source image (spec §6
// set_source_texture(tex, is_flipped)). The handle is written straight into
// the history ring's current slot: Device has no texture-copy primitive, so
// the ring rotates through caller-supplied handles rather than owning
// device-side snapshots (see graph.go).
func (c *Chain) SetSourceTexture(tex texture.Handle, isFlipped bool) {
	c.sourceTex = tex
	c.sourceFlipped = isFlipped
	if c.graph != nil {
		c.graph.history.handles[c.graph.history.cursor] = tex
	}
}

// SetFrameDirection sets the signed playback direction bound to
// FrameDirection uniforms (spec §6 set_frame_direction; typically ±1).
func (c *Chain) SetFrameDirection(dir int32) {
	c.frameDirection = dir
}

// SetDefaultFilter records a default sampler filter mode (spec §6
// set_default_filter(linear)). The recorded value is not read back: texture
// descriptors and pass bindings carry each preset's filter as parsed,
// FilterUnspecified included, whatever default is recorded here.
func (c *Chain) SetDefaultFilter(linear bool) {
	if linear {
		c.defaultFilter = texture.FilterLinear
	} else {
		c.defaultFilter = texture.FilterNearest
	}
}

// SetParameter updates a parameter's value by name (spec §6
// set_parameter); the new value takes effect starting next frame's gather
// (spec §5). Returns false if no such parameter exists.
func (c *Chain) SetParameter(name string, value float64) bool {
	if c.shader == nil {
		return false
	}
	return c.shader.SetParameter(name, value)
}

// SetParameterByIndex is SetParameter addressed by index.
func (c *Chain) SetParameterByIndex(index int, value float64) bool {
	if c.shader == nil {
		return false
	}
	return c.shader.SetParameterByIndex(index, value)
}

// stagingLayout computes each pass's 256-byte-aligned base offset into one
// frame's staging slice (spec §6: "a single host-visible buffer slice ...
// sized to the sum of every pass's (ubo_size + push_size), each pass's
// region aligned to 256 bytes").
func (c *Chain) stagingLayout() ([]uint64, uint64) {
	bases := make([]uint64, len(c.shader.Passes))
	var total uint64
	for i, p := range c.shader.Passes {
		total = core.AlignUp(total, core.DefaultUBOAlignment)
		bases[i] = total
		total += uint64(p.Reflection.UBOSize) + uint64(p.Reflection.PushSize)
	}
	return bases, core.AlignUp(total, core.DefaultUBOAlignment)
}

// bufferOffsets splits a pass's absolute base into its UBO and push-constant
// sub-offsets, reconstructing the order crosscompile.BuildPassBindings
// appends them in (UBO first, then push) from the sizes reflection already
// recorded, rather than adding a discriminant field to BufferBinding.
func bufferOffsets(pass *shader.Pass, base uint64) (uboOffset, pushOffset uint64) {
	uboOffset = base
	pushOffset = base
	if pass.Reflection.UBOSize > 0 {
		pushOffset = base + uint64(pass.Reflection.UBOSize)
	}
	return uboOffset, pushOffset
}

// RenderOffscreenPasses encodes every pass but the last (spec §6
// render_offscreen_passes(cmd_buf)). A no-op while uninitialized or failed;
// the final pass alone carries the neutral-passthrough fallback since only
// it has a caller-visible target.
func (c *Chain) RenderOffscreenPasses(cmd gpu.CommandBuffer) {
	if c.state != stateReady {
		return
	}
	bases, total := c.stagingLayout()
	slice, fence := c.dev.AcquireStagingSlice(total)
	c.frameStaging, c.frameFence, c.framePassBase = slice, fence, bases

	n := len(c.shader.Passes)
	for i := 0; i < n-1; i++ {
		if err := c.drawPass(cmd, i); err != nil {
			c.fail(err)
			return
		}
	}
}

// RenderFinalPass encodes the final pass directly into target (spec §6
// render_final_pass(encoder)). Per spec §7, a per-frame failure here never
// returns an error: it transitions the chain to failed and renders neutral
// passthrough instead.
func (c *Chain) RenderFinalPass(cmd gpu.CommandBuffer, target gpu.RenderPassDescriptor) {
	if c.state != stateReady {
		c.renderNeutral(cmd, target)
		return
	}
	if c.frameStaging == nil {
		bases, total := c.stagingLayout()
		c.frameStaging, c.frameFence = c.dev.AcquireStagingSlice(total)
		c.framePassBase = bases
	}

	n := len(c.shader.Passes)
	if err := c.drawFinalPass(cmd, n-1, target); err != nil {
		c.fail(err)
		c.renderNeutral(cmd, target)
		return
	}
	c.endFrame()
}

// Render is the convenience single-call form of render_offscreen_passes
// followed by render_final_pass (spec §6 render(cmd_buf, encoder)).
func (c *Chain) Render(cmd gpu.CommandBuffer, target gpu.RenderPassDescriptor) {
	c.RenderOffscreenPasses(cmd)
	c.RenderFinalPass(cmd, target)
}

func (c *Chain) drawPass(cmd gpu.CommandBuffer, i int) error {
	output, ok := c.graph.outputHandle(i)
	if !ok {
		return core.NewPassError(core.ErrLink, i, c.shader.Passes[i].Preset.Source, "pass has no offscreen output")
	}
	c.encodePass(cmd, i, output, nil)
	return nil
}

func (c *Chain) drawFinalPass(cmd gpu.CommandBuffer, i int, target gpu.RenderPassDescriptor) error {
	c.encodePass(cmd, i, texture.Invalid, target)
	return nil
}

func (c *Chain) encodePass(cmd gpu.CommandBuffer, i int, output texture.Handle, target gpu.RenderPassDescriptor) {
	pass := &c.shader.Passes[i]
	c.gatherUniforms(i, pass)
	inputs := c.resolveInputs(pass, i)
	uboOff, pushOff := bufferOffsets(pass, c.framePassBase[i])
	c.dev.DrawFullscreenQuad(cmd, c.pipelines[i], output, target, inputs, uboOff, pushOff)
}

func (c *Chain) gatherUniforms(i int, pass *shader.Pass) {
	mvp := identityMVP()
	if i == len(c.shader.Passes)-1 {
		mvp = orthoMVP(c.drawableSize.Width, c.drawableSize.Height, c.sourceFlipped)
	}
	in := passUniformInputs{
		mvp:               mvp,
		outputSize:        c.sizes[i],
		finalViewportSize: c.drawableSize,
		frameCount:        c.frameCount,
		frameDirection:    c.frameDirection,
		parameterValue:    c.parameterValue,
		textureSize:       c.textureSizeFor,
	}
	gatherPassUniforms(c.frameStaging, c.framePassBase[i], pass, in)
}

func (c *Chain) parameterValue(idx int) float64 {
	if idx < 0 || idx >= len(c.shader.Parameters) {
		return 0
	}
	return c.shader.Parameters[idx].Value
}

func (c *Chain) textureSizeFor(sem semantics.TextureSemantic, idx int) Size {
	switch sem {
	case semantics.TextureOriginal, semantics.TextureSource, semantics.TextureOriginalHistory:
		return c.sourceSize
	case semantics.TexturePassOutput:
		if idx >= 0 && idx < len(c.sizes)-1 {
			return c.sizes[idx]
		}
	case semantics.TexturePassFeedback:
		if idx >= 0 && idx < len(c.sizes) {
			return c.sizes[idx]
		}
	}
	return Size{}
}

func (c *Chain) resolveInputs(pass *shader.Pass, i int) []texture.Handle {
	inputs := make([]texture.Handle, len(pass.Bindings.Textures))
	for j, tb := range pass.Bindings.Textures {
		inputs[j] = c.resolveTextureHandle(tb, i)
	}
	return inputs
}

func (c *Chain) resolveTextureHandle(tb crosscompile.TextureBinding, i int) texture.Handle {
	switch tb.Semantic {
	case semantics.TextureOriginal:
		return c.graph.history.at(0)
	case semantics.TextureSource:
		return c.graph.sourceHandle(i)
	case semantics.TextureOriginalHistory:
		return c.graph.history.at(tb.Index)
	case semantics.TexturePassOutput:
		if h, ok := c.graph.outputHandle(tb.Index); ok {
			return h
		}
	case semantics.TexturePassFeedback:
		if h, ok := c.graph.feedback[tb.Index]; ok {
			return h
		}
	case semantics.TextureUser:
		if tb.Index >= 0 && tb.Index < len(c.lutTex) {
			return c.lutTex[tb.Index]
		}
	}
	return texture.Invalid
}

// endFrame performs the atomic end-of-frame transition (spec §4.F step 3):
// feedback swap, history advance, frame counter increment.
func (c *Chain) endFrame() {
	c.graph.endFrame()
	c.frameCount++
	c.frameStaging = nil
	c.frameFence = nil
	c.framePassBase = nil
}

func (c *Chain) fail(err error) {
	c.state = stateFailed
	if c.OnDeviceLoss != nil {
		c.OnDeviceLoss(err)
	}
}

// renderNeutral draws the source texture straight through (spec §7: "the
// chain renders a neutral passthrough of the source texture to the final
// render target"), using the sentinel passthroughPipeline a Device
// implementation never actually created via CreatePipeline.
func (c *Chain) renderNeutral(cmd gpu.CommandBuffer, target gpu.RenderPassDescriptor) {
	c.dev.DrawFullscreenQuad(cmd, passthroughPipeline, texture.Invalid, target, []texture.Handle{c.sourceTex}, 0, 0)
}

// CaptureSourceImage reads back the current Original texture (spec §6
// capture_source_image).
func (c *Chain) CaptureSourceImage() ([]byte, error) {
	h := c.sourceTex
	if c.graph != nil {
		h = c.graph.history.at(0)
	}
	px, err := c.dev.BlitToReadback(h)
	if err != nil {
		return nil, core.NewError(core.ErrImageCaptureFailed, "", "%v", err)
	}
	return px, nil
}

// CaptureOutputImage reads back the last offscreen pass's output (spec §6
// capture_output_image). When the shader is single-pass, the true final
// image was drawn straight into the caller's render target, which this
// model has no readback handle for; capture then fails the same way it
// would against an unsupported target on a real backend.
func (c *Chain) CaptureOutputImage() ([]byte, error) {
	if c.shader == nil {
		return nil, core.NewError(core.ErrImageCaptureFailed, "", "no shader loaded")
	}
	n := len(c.shader.Passes)
	h, ok := c.graph.outputHandle(n - 2)
	if !ok {
		return nil, core.NewError(core.ErrImageCaptureFailed, "", "final pass has no capturable offscreen output")
	}
	px, err := c.dev.BlitToReadback(h)
	if err != nil {
		return nil, core.NewError(core.ErrImageCaptureFailed, "", "%v", err)
	}
	return px, nil
}
