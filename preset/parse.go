package preset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/retrofx/slangchain/core"
	"github.com/retrofx/slangchain/texture"
)

// Parse reads and resolves a .slangp preset file.
func Parse(path string) (*Preset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.NewError(core.ErrParse, path, "%v", err)
	}
	defer f.Close()

	raw, order, err := scanKeyValues(f)
	if err != nil {
		return nil, core.NewError(core.ErrParse, path, "%v", err)
	}
	_ = order // key declaration order isn't semantically meaningful for .slangp

	base := filepath.Dir(path)

	shadersStr, ok := raw["shaders"]
	if !ok {
		return nil, core.NewError(core.ErrParse, path, "missing required key 'shaders'")
	}
	n, err := strconv.Atoi(shadersStr)
	if err != nil || n < 0 {
		return nil, core.NewError(core.ErrParse, path, "invalid 'shaders' value %q", shadersStr)
	}

	p := &Preset{
		BasePath:                base,
		Passes:                  make([]Pass, n),
		ParameterOverrides:      map[string]float64{},
		ParameterGroupOverrides: map[string]string{},
	}

	for i := 0; i < n; i++ {
		pass, err := parsePass(raw, base, i)
		if err != nil {
			return nil, err
		}
		p.Passes[i] = pass
	}

	if err := parseLUTs(raw, base, p); err != nil {
		return nil, err
	}
	parseParameters(raw, p)
	parseParameterGroups(raw, p)

	return p, nil
}

func parsePass(raw map[string]string, base string, i int) (Pass, error) {
	p := Pass{
		ScaleModeX: ScaleSource,
		ScaleModeY: ScaleSource,
		ScaleX:     1.0,
		ScaleY:     1.0,
		Filter:     texture.FilterUnspecified,
		Wrap:       texture.WrapBorder,
	}

	srcKey := fmt.Sprintf("shader%d", i)
	src, ok := raw[srcKey]
	if !ok {
		return p, core.NewPassError(core.ErrParse, i, base, "missing required key %q", srcKey)
	}
	p.Source = resolvePath(base, src)

	if alias, ok := firstOf(raw, fmt.Sprintf("alias%d", i), fmt.Sprintf("shader%d_alias", i)); ok {
		p.Alias = alias
	}

	if v, ok := raw[fmt.Sprintf("filter_linear%d", i)]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			if b {
				p.Filter = texture.FilterLinear
			} else {
				p.Filter = texture.FilterNearest
			}
		}
	}

	if v, ok := raw[fmt.Sprintf("wrap_mode%d", i)]; ok {
		if wm, ok := texture.WrapModeFromToken(v); ok {
			p.Wrap = wm
		} else {
			return p, core.NewPassError(core.ErrParse, i, base, "invalid wrap_mode %q", v)
		}
	}

	p.MipmapInput = parseBoolKey(raw, fmt.Sprintf("mipmap_input%d", i))
	p.FloatFramebuffer = parseBoolKey(raw, fmt.Sprintf("float_framebuffer%d", i))
	p.SRGBFramebuffer = parseBoolKey(raw, fmt.Sprintf("srgb_framebuffer%d", i))

	if parseBoolKey(raw, fmt.Sprintf("feedback_pass%d", i)) || parseBoolKey(raw, fmt.Sprintf("shader%d_feedback", i)) {
		p.IsFeedback = true
	}

	if v, ok := raw[fmt.Sprintf("frame_count_mod%d", i)]; ok {
		if u, err := strconv.ParseUint(v, 10, 32); err == nil {
			p.FrameCountMod = uint(u)
		}
	}

	if sx, ok := raw[fmt.Sprintf("scale_x%d", i)]; ok {
		if f, err := strconv.ParseFloat(sx, 64); err == nil {
			p.ScaleX = f
		}
	} else if s, ok := raw[fmt.Sprintf("scale%d", i)]; ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			p.ScaleX = f
		}
	}
	if sy, ok := raw[fmt.Sprintf("scale_y%d", i)]; ok {
		if f, err := strconv.ParseFloat(sy, 64); err == nil {
			p.ScaleY = f
		}
	} else if s, ok := raw[fmt.Sprintf("scale%d", i)]; ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			p.ScaleY = f
		}
	}

	if sm, ok := raw[fmt.Sprintf("scale_type%d", i)]; ok {
		mode, valid := ScaleModeFromToken(sm)
		if !valid {
			return p, core.NewPassError(core.ErrParse, i, base, "invalid scale_type %q", sm)
		}
		p.ScaleModeX, p.ScaleModeY = mode, mode
	}
	if sx, ok := raw[fmt.Sprintf("scale_type_x%d", i)]; ok {
		mode, valid := ScaleModeFromToken(sx)
		if !valid {
			return p, core.NewPassError(core.ErrParse, i, base, "invalid scale_type_x %q", sx)
		}
		p.ScaleModeX = mode
	}
	if sy, ok := raw[fmt.Sprintf("scale_type_y%d", i)]; ok {
		mode, valid := ScaleModeFromToken(sy)
		if !valid {
			return p, core.NewPassError(core.ErrParse, i, base, "invalid scale_type_y %q", sy)
		}
		p.ScaleModeY = mode
	}

	return p, nil
}

func parseLUTs(raw map[string]string, base string, p *Preset) error {
	namesStr, ok := raw["textures"]
	if !ok {
		return nil
	}
	names := splitNames(namesStr)
	for _, name := range names {
		src, ok := raw[name]
		if !ok {
			return core.NewError(core.ErrParse, base, "texture %q has no path assigned", name)
		}
		lut := LUT{
			Name:   name,
			Source: resolvePath(base, src),
			Wrap:   texture.WrapBorder,
			Filter: texture.FilterUnspecified,
		}
		if v, ok := raw[name+"_linear"]; ok {
			if b, err := strconv.ParseBool(v); err == nil {
				if b {
					lut.Filter = texture.FilterLinear
				} else {
					lut.Filter = texture.FilterNearest
				}
			}
		}
		if v, ok := raw[name+"_wrap_mode"]; ok {
			if wm, ok := texture.WrapModeFromToken(v); ok {
				lut.Wrap = wm
			}
		}
		lut.Mipmap = parseBoolKey(raw, name+"_mipmap")
		p.LUTs = append(p.LUTs, lut)
	}
	return nil
}

func parseParameters(raw map[string]string, p *Preset) {
	namesStr, ok := raw["parameters"]
	if !ok {
		return
	}
	for _, name := range splitNames(namesStr) {
		if v, ok := raw[name]; ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				p.ParameterOverrides[name] = f
			}
		}
	}
}

// parameterGroupSuffix is the per-parameter key suffix naming which entry
// of the preset's `parameter_groups` list the parameter belongs to.
const parameterGroupSuffix = "_group"

// parseParameterGroups reads the opt-in `parameter_groups = NAMES` list and
// every `NAME_group = INDEX` key, populating ParameterGroupOverrides. A
// preset with neither key leaves the map empty. An out-of-range or
// non-numeric index is kept as a literal group name, so a preset can name
// groups directly without declaring `parameter_groups` at all.
func parseParameterGroups(raw map[string]string, p *Preset) {
	var groupNames []string
	if v, ok := raw["parameter_groups"]; ok {
		groupNames = splitNames(v)
	}
	for k, v := range raw {
		name, ok := strings.CutSuffix(k, parameterGroupSuffix)
		if !ok || name == "" {
			continue
		}
		group := v
		if idx, err := strconv.Atoi(v); err == nil && idx >= 0 && idx < len(groupNames) {
			group = groupNames[idx]
		}
		p.ParameterGroupOverrides[name] = group
	}
}

func splitNames(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ','
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func parseBoolKey(raw map[string]string, k string) bool {
	v, ok := raw[k]
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func firstOf(raw map[string]string, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			return v, true
		}
	}
	return "", false
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// scanKeyValues implements the key=value / #-comment / "-quoted line format
// from spec §4.A/§6. Duplicate keys take the last occurrence.
func scanKeyValues(f *os.File) (map[string]string, []string, error) {
	raw := make(map[string]string)
	var order []string

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return nil, nil, fmt.Errorf("line %d: expected key=value, got %q", lineNo, line)
		}
		k := strings.TrimSpace(line[:eq])
		v := strings.TrimSpace(line[eq+1:])
		v = unquote(v)
		if _, existed := raw[k]; !existed {
			order = append(order, k)
		}
		raw[k] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return raw, order, nil
}

func unquote(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return v
}
