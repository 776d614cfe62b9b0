package chain

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/retrofx/slangchain/gpu"
	"github.com/retrofx/slangchain/shader"
	"github.com/retrofx/slangchain/spirv"
	"github.com/retrofx/slangchain/texture"
)

// multiCompiler picks a fixture module by a marker string present in the
// preprocessed source, so each pass in a multi-pass fixture gets its own
// reflection instead of sharing one fakeCompiler's fixed module.
type multiCompiler struct {
	byMarker map[string]spirv.Words
}

func (m multiCompiler) Compile(source string, stage spirv.Stage) (spirv.Words, error) {
	for marker, words := range m.byMarker {
		if strings.Contains(source, marker) {
			return words, nil
		}
	}
	return m.byMarker["default"], nil
}

func twoPassFeedbackShader(t *testing.T, dev gpu.Device) *Chain {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, dir, "pass0.slang", `#version 450
layout(set = 0, binding = 0) uniform UBO { mat4 MVP; vec4 OutputSize; } ubo;
layout(set = 0, binding = 1) uniform sampler2D Source;
layout(set = 0, binding = 2) uniform sampler2D PassFeedback0;

#pragma stage vertex
void main() { gl_Position = ubo.MVP * vec4(0); }

#pragma stage fragment
layout(location = 0) out vec4 FragColor;
void main() { FragColor = texture(Source, vec2(0)) + texture(PassFeedback0, vec2(0)); }
`)
	writeFile(t, dir, "pass1.slang", `#version 450
layout(set = 0, binding = 0) uniform UBO { mat4 MVP; } ubo;
layout(set = 0, binding = 1) uniform sampler2D PassOutput0;

#pragma stage vertex
void main() { gl_Position = ubo.MVP * vec4(0); }

#pragma stage fragment
layout(location = 0) out vec4 FragColor;
void main() { FragColor = texture(PassOutput0, vec2(0)); }
`)
	presetPath := writeFile(t, dir, "fb.slangp", `
shaders = 2
shader0 = pass0.slang
shader1 = pass1.slang
feedback_pass0 = true
`)

	words0 := encodeModule([]string{"MVP", "OutputSize"}, []string{"Source", "PassFeedback0"})
	words1 := encodeModule([]string{"MVP"}, []string{"PassOutput0"})
	compiler := multiCompiler{byMarker: map[string]spirv.Words{
		"PassFeedback0": words0,
		"PassOutput0":   words1,
	}}

	sh, err := shader.Load(presetPath, shader.Options{
		Compiler:      compiler,
		CrossCompiler: fakeCrossCompiler{},
	})
	if err != nil {
		t.Fatalf("shader.Load: %v", err)
	}

	c := New(dev)
	c.SetSourceRect(Size{Width: 64, Height: 64}, 1)
	c.SetDrawableSize(Size{Width: 128, Height: 128})
	if err := c.setLoadedShader(sh); err != nil {
		t.Fatalf("setLoadedShader: %v", err)
	}
	return c
}

// setLoadedShader lets tests install an already-parsed shader without
// round-tripping through a second shader.Load in SetShader (which would
// rebuild the same preset from disk for no reason); it reuses SetShader's
// own resource-building path for fidelity.
func (c *Chain) setLoadedShader(sh *shader.SlangShader) error {
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
		return err
	}
	c.destroyResources()
	c.shader, c.graph, c.pipelines, c.lutTex, c.sizes = sh, graph, pipelines, lutTex, sizes
	c.state = stateReady
	return nil
}

func TestChainBuildsOnePipelinePerPass(t *testing.T) {
	dev := gpu.NewStubDevice()
	c := twoPassFeedbackShader(t, dev)
	if len(c.pipelines) != 2 {
		t.Fatalf("expected 2 pipelines, got %d", len(c.pipelines))
	}
	if len(c.graph.passOutput) != 1 {
		t.Fatalf("expected 1 offscreen output (pass0), got %d", len(c.graph.passOutput))
	}
	if _, ok := c.graph.feedback[0]; !ok {
		t.Fatalf("expected pass0 to have a feedback texture")
	}
	if !dev.WasCleared(c.graph.feedback[0]) {
		t.Errorf("feedback texture should be cleared on first allocation (spec §9)")
	}
}

func TestChainRenderAdvancesFrameAndSwapsFeedback(t *testing.T) {
	dev := gpu.NewStubDevice()
	c := twoPassFeedbackShader(t, dev)

	src := texture.Handle(99)
	c.SetSourceTexture(src, false)

	firstOutput := c.graph.passOutput[0]
	firstFeedback := c.graph.feedback[0]

	cmd := dev.BeginCommandBuffer()
	c.Render(cmd, struct{}{})

	if c.frameCount != 1 {
		t.Fatalf("frameCount after one Render = %d, want 1", c.frameCount)
	}
	if c.graph.passOutput[0] != firstFeedback {
		t.Errorf("after endFrame, pass0's output slot should be the old feedback handle")
	}
	if c.graph.feedback[0] != firstOutput {
		t.Errorf("after endFrame, pass0's feedback slot should be the old output handle")
	}
	if c.graph.history.current() != src {
		t.Errorf("history ring current should still be the bound source handle")
	}
}

func TestChainSetParameterRejectsUnknownName(t *testing.T) {
	dev := gpu.NewStubDevice()
	c := twoPassFeedbackShader(t, dev)
	if c.SetParameter("NOPE", 1) {
		t.Fatal("SetParameter should fail for an unknown name on this fixture")
	}
}

func TestChainResizeReflowsOffscreenTextures(t *testing.T) {
	dev := gpu.NewStubDevice()
	c := twoPassFeedbackShader(t, dev)

	c.SetSourceRect(Size{Width: 128, Height: 128}, 1)

	d := c.arena.Get(c.graph.passOutput[0])
	if d == nil {
		t.Fatal("pass0 output descriptor missing after resize")
	}
	if d.Width != 128 || d.Height != 128 {
		t.Errorf("pass0 output size after resize = %dx%d, want 128x128", d.Width, d.Height)
	}
}

type recordingConverter struct {
	gotFormat texture.PixelFormat
	calls     int
}

func (r *recordingConverter) Convert(img image.Image, format texture.PixelFormat) ([]byte, error) {
	r.calls++
	r.gotFormat = format
	return []byte{1, 2, 3, 4}, nil
}

func TestChainConvertSourceImageUsesConverter(t *testing.T) {
	dev := gpu.NewStubDevice()
	c := New(dev)

	rc := &recordingConverter{}
	c.SetSourceConverter(rc)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.White)
		}
	}

	px, format, err := c.ConvertSourceImage(img)
	if err != nil {
		t.Fatalf("ConvertSourceImage: %v", err)
	}
	if rc.calls != 1 {
		t.Fatalf("converter called %d times, want 1", rc.calls)
	}
	if format != texture.FormatR8g8b8a8Unorm {
		t.Errorf("format with no shader loaded = %v, want the default", format)
	}
	if len(px) != 4 {
		t.Errorf("unexpected converted byte count %d", len(px))
	}
}

func singlePassShader(t *testing.T, dev gpu.Device) *Chain {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, dir, "pass0.slang", `#version 450
layout(set = 0, binding = 0) uniform UBO { mat4 MVP; } ubo;
layout(set = 0, binding = 1) uniform sampler2D Source;

#pragma stage vertex
void main() { gl_Position = ubo.MVP * vec4(0); }

#pragma stage fragment
layout(location = 0) out vec4 FragColor;
void main() { FragColor = texture(Source, vec2(0)); }
`)
	presetPath := writeFile(t, dir, "single.slangp", `
shaders = 1
shader0 = pass0.slang
`)

	words := encodeModule([]string{"MVP"}, []string{"Source"})
	sh, err := shader.Load(presetPath, shader.Options{
		Compiler:      fakeCompiler{words: words},
		CrossCompiler: fakeCrossCompiler{},
	})
	if err != nil {
		t.Fatalf("shader.Load: %v", err)
	}

	c := New(dev)
	c.SetSourceRect(Size{Width: 64, Height: 64}, 1)
	c.SetDrawableSize(Size{Width: 64, Height: 64})
	if err := c.setLoadedShader(sh); err != nil {
		t.Fatalf("setLoadedShader: %v", err)
	}
	return c
}

func TestChainCaptureOutputImageSinglePassFailsWithoutPanicking(t *testing.T) {
	dev := gpu.NewStubDevice()
	c := singlePassShader(t, dev)

	if _, err := c.CaptureOutputImage(); err == nil {
		t.Fatal("expected an error capturing a single-pass chain's output, got nil")
	}
}

func TestChainUninitializedRendersPassthrough(t *testing.T) {
	dev := gpu.NewStubDevice()
	c := New(dev)
	c.SetSourceTexture(texture.Handle(7), false)

	cmd := dev.BeginCommandBuffer()
	c.Render(cmd, struct{}{})

	found := false
	for _, call := range dev.Calls {
		if call.Method == "DrawFullscreenQuad" && len(call.Args) > 0 && call.Args[0] == passthroughPipeline {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a DrawFullscreenQuad call with the passthrough pipeline while uninitialized")
	}
}
