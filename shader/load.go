package shader

import (
	"github.com/retrofx/slangchain/core"
	"github.com/retrofx/slangchain/crosscompile"
	"github.com/retrofx/slangchain/glsl"
	"github.com/retrofx/slangchain/preset"
	"github.com/retrofx/slangchain/semantics"
	"github.com/retrofx/slangchain/spirv"
	"github.com/retrofx/slangchain/texture"
)

// Options configures a Load call: the otherwise-external compiler and
// cross-compiler boundaries (spec §4.C/§4.E), plus the target format used
// when neither the preset nor the source declare one.
type Options struct {
	Compiler      spirv.StageCompiler
	CrossCompiler crosscompile.CrossCompiler
	CrossOptions  crosscompile.Options
	DefaultFormat texture.PixelFormat
}

func (o Options) withDefaults() Options {
	if o.Compiler == nil {
		o.Compiler = spirv.UnavailableCompiler{}
	}
	if o.CrossCompiler == nil {
		o.CrossCompiler = crosscompile.UnavailableCompiler{}
	}
	if o.DefaultFormat == texture.FormatUnknown {
		o.DefaultFormat = texture.FormatR8g8b8a8Unorm
	}
	return o
}

// Load parses path as a .slangp preset and builds every pass (spec §2 data
// flow url → A → G → (per pass: B → C → D → E)). A failure here is fatal to
// the load (spec §7): the caller is expected to retain whatever SlangShader
// it already had.
func Load(path string, opts Options) (*SlangShader, error) {
	opts = opts.withDefaults()

	p, err := preset.Parse(path)
	if err != nil {
		return nil, err
	}

	s := &SlangShader{BasePath: p.BasePath}

	aliases := map[string]int{}
	feedback := map[int]bool{}
	for i, pass := range p.Passes {
		if pass.Alias != "" {
			aliases[pass.Alias] = i
		}
		feedback[i] = pass.IsFeedback
	}

	lutIndex := map[int]crosscompile.LUTSampler{}
	lutNameIndex := map[string]int{}
	for i, lut := range p.LUTs {
		lutNameIndex[lut.Name] = i
		lutIndex[i] = crosscompile.LUTSampler{Wrap: lut.Wrap, Filter: lut.Filter}
		s.LUTs = append(s.LUTs, LUT{Name: lut.Name, Path: lut.Source, Wrap: lut.Wrap, Filter: lut.Filter, Mipmap: lut.Mipmap})
	}

	var declared []declaredParameter
	maxHistory := -1

	for i, pp := range p.Passes {
		src, err := glsl.Preprocess(pp.Source)
		if err != nil {
			return nil, err
		}

		for _, gp := range src.Parameters {
			declared = append(declared, declaredParameter{pass: i, param: gp})
		}

		ctx := semantics.PassContext{
			PassIndex:      i,
			PassAliases:    aliases,
			LUTIndex:       lutNameIndex,
			FeedbackPasses: feedback,
		}
		// Parameters are resolved against the running merged set so a
		// parameter declared in an earlier pass is visible to a later one
		// sampling it (spec §3: parameters are shader-global, not per-pass).
		ctx.Parameters = toParameterDecls(declared)

		built, err := buildPass(i, pp, src, ctx, opts, lutIndex)
		if err != nil {
			return nil, err
		}
		s.Passes = append(s.Passes, *built)

		for k := range built.Reflection.Textures[semantics.TextureOriginalHistory] {
			if k > maxHistory {
				maxHistory = k
			}
		}
	}
	if maxHistory < 0 {
		maxHistory = 0
	}
	s.HistoryCount = maxHistory

	params, err := mergeParameters(declared)
	if err != nil {
		return nil, err
	}
	for name, v := range p.ParameterOverrides {
		if i := indexOfParameter(params, name); i >= 0 {
			params[i].Value = core.Clamp(v, params[i].Minimum, params[i].Maximum)
		}
	}
	s.Parameters = params

	s.Groups = buildGroups(p.ParameterGroupOverrides, params)

	return s, nil
}

type declaredParameter struct {
	pass  int
	param glsl.Parameter
}

func toParameterDecls(declared []declaredParameter) []semantics.ParameterDecl {
	seen := map[string]int{}
	var out []semantics.ParameterDecl
	for _, d := range declared {
		if _, ok := seen[d.param.Name]; ok {
			continue
		}
		idx := len(out)
		seen[d.param.Name] = idx
		out = append(out, semantics.ParameterDecl{Name: d.param.Name, Index: idx})
	}
	return out
}

// mergeParameters folds every pass's #pragma parameter declarations into
// one ordered list, enforcing spec §3's cross-pass bound-matching invariant.
func mergeParameters(declared []declaredParameter) ([]Parameter, error) {
	var out []Parameter
	index := map[string]int{}

	for _, d := range declared {
		gp := d.param
		if i, ok := index[gp.Name]; ok {
			existing := out[i]
			if existing.Minimum != gp.Min || existing.Initial != gp.Init || existing.Maximum != gp.Max || existing.Step != gp.Step {
				return nil, core.NewPassError(core.ErrDuplicateParameterPragma, d.pass, "", "parameter %q redeclared with different bounds in pass %d (first declared in pass %d)", gp.Name, d.pass, existing.Pass)
			}
			continue
		}
		index[gp.Name] = len(out)
		out = append(out, Parameter{
			Name:        gp.Name,
			Description: gp.Desc,
			Index:       len(out),
			Pass:        d.pass,
			Minimum:     gp.Min,
			Initial:     gp.Init,
			Maximum:     gp.Max,
			Step:        gp.Step,
			Value:       gp.Init,
		})
	}
	return out, nil
}

func indexOfParameter(params []Parameter, name string) int {
	for i, p := range params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func buildGroups(overrides map[string]string, params []Parameter) []ParameterGroup {
	if len(overrides) == 0 {
		return nil
	}
	order := []string{}
	byName := map[string]*ParameterGroup{}
	for i, p := range params {
		group, ok := overrides[p.Name]
		if !ok {
			continue
		}
		g, ok := byName[group]
		if !ok {
			order = append(order, group)
			g = &ParameterGroup{Name: group}
			byName[group] = g
		}
		g.Parameters = append(g.Parameters, i)
	}
	out := make([]ParameterGroup, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}

func buildPass(i int, pp preset.Pass, src *glsl.Source, ctx semantics.PassContext, opts Options, lutSamplers map[int]crosscompile.LUTSampler) (*Pass, error) {
	vertWords, err := opts.Compiler.Compile(src.Vertex, spirv.StageVertex)
	if err != nil {
		return nil, wrapPassErr(i, pp.Source, err)
	}
	fragWords, err := opts.Compiler.Compile(src.Fragment, spirv.StageFragment)
	if err != nil {
		return nil, wrapPassErr(i, pp.Source, err)
	}

	vertMod, err := spirv.Decode(vertWords)
	if err != nil {
		return nil, wrapPassErr(i, pp.Source, err)
	}
	fragMod, err := spirv.Decode(fragWords)
	if err != nil {
		return nil, wrapPassErr(i, pp.Source, err)
	}

	refl, err := semantics.ResolvePass(ctx, vertMod, fragMod, pp.Source)
	if err != nil {
		return nil, err
	}

	vertCompiled, err := opts.CrossCompiler.Compile(vertWords, spirv.StageVertex, opts.CrossOptions)
	if err != nil {
		return nil, wrapPassErr(i, pp.Source, err)
	}
	fragCompiled, err := opts.CrossCompiler.Compile(fragWords, spirv.StageFragment, opts.CrossOptions)
	if err != nil {
		return nil, wrapPassErr(i, pp.Source, err)
	}

	format := pp.Format
	if format == texture.FormatUnknown {
		format = src.Format
	}
	if format == texture.FormatUnknown {
		format = opts.DefaultFormat
	}

	bindings := crosscompile.BuildPassBindings(refl, format, pp.Wrap, pp.Filter, lutSamplers)

	return &Pass{
		Index:          i,
		Preset:         pp,
		VertexSource:   vertCompiled.Source,
		FragmentSource: fragCompiled.Source,
		Format:         format,
		Reflection:     refl,
		Bindings:       bindings,
	}, nil
}

func wrapPassErr(pass int, path string, err error) error {
	if ce, ok := err.(*core.ChainError); ok {
		if ce.Pass < 0 {
			ce.Pass = pass
		}
		return ce
	}
	return core.NewPassError(core.ErrPreprocess, pass, path, "%v", err)
}
