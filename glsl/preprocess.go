package glsl

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/retrofx/slangchain/core"
	"github.com/retrofx/slangchain/texture"
)

var (
	includeRe      = regexp.MustCompile(`^\s*#include\s+"([^"]+)"\s*$`)
	pragmaNameRe   = regexp.MustCompile(`^\s*#pragma\s+name\s+(\S+)\s*$`)
	pragmaFormatRe = regexp.MustCompile(`^\s*#pragma\s+format\s+(\S+)\s*$`)
	pragmaStageRe  = regexp.MustCompile(`^\s*#pragma\s+stage\s+(vertex|fragment)\s*$`)
	pragmaParamRe  = regexp.MustCompile(`^\s*#pragma\s+parameter\s+(\S+)\s+"([^"]*)"\s+(\S+)\s+(\S+)\s+(\S+)(?:\s+(\S+))?\s*$`)
	versionRe      = regexp.MustCompile(`^\s*#version\s+\S+`)
)

// formatAliases covers #pragma format tokens the slang preset ecosystem
// accepts as synonyms for a texture.FormatFromToken name (spec §4.B "a fixed
// mapping").
var formatAliases = map[string]texture.PixelFormat{
	"SRGB": texture.FormatR8g8b8a8Srgb,
}

func formatFromPragmaToken(token string) (texture.PixelFormat, bool) {
	if pf, ok := texture.FormatFromToken(token); ok {
		return pf, ok
	}
	pf, ok := formatAliases[token]
	return pf, ok
}

// Preprocess reads path, splices in its #include graph, harvests pragmas,
// and splits the result into vertex and fragment stage sources.
func Preprocess(path string) (*Source, error) {
	lines, err := expandIncludes(path, map[string]bool{})
	if err != nil {
		return nil, err
	}

	src := &Source{Path: path}

	var prelude, vertex, fragment []string
	stage := StagePrelude
	paramsByName := map[string]Parameter{}
	nameSeen, formatSeen := false, false
	versionSeen := false

	for _, ln := range lines {
		if versionRe.MatchString(ln) {
			versionSeen = true
		}

		if m := pragmaStageRe.FindStringSubmatch(ln); m != nil {
			if m[1] == "vertex" {
				stage = StageVertex
			} else {
				stage = StageFragment
			}
			continue
		}

		if m := pragmaNameRe.FindStringSubmatch(ln); m != nil {
			if nameSeen {
				return nil, core.NewError(core.ErrMultipleNamePragma, path, "duplicate #pragma name")
			}
			nameSeen = true
			src.Name = m[1]
			continue
		}

		if m := pragmaFormatRe.FindStringSubmatch(ln); m != nil {
			if formatSeen {
				return nil, core.NewError(core.ErrMultipleFormatPragma, path, "duplicate #pragma format")
			}
			formatSeen = true
			f, ok := formatFromPragmaToken(m[1])
			if !ok {
				return nil, core.NewError(core.ErrInvalidFormatPragma, path, "unrecognized format token %q", m[1])
			}
			src.Format = f
			continue
		}

		if m := pragmaParamRe.FindStringSubmatch(ln); m != nil {
			p, err := parseParameter(path, m)
			if err != nil {
				return nil, err
			}
			if existing, ok := paramsByName[p.Name]; ok {
				if existing.Init != p.Init || existing.Min != p.Min || existing.Max != p.Max || existing.Step != p.Step {
					return nil, core.NewError(core.ErrDuplicateParameterPragma, path, "parameter %q redeclared with different bounds", p.Name)
				}
				continue
			}
			paramsByName[p.Name] = p
			src.Parameters = append(src.Parameters, p)
			continue
		}

		switch stage {
		case StagePrelude:
			prelude = append(prelude, ln)
		case StageVertex:
			vertex = append(vertex, ln)
		case StageFragment:
			fragment = append(fragment, ln)
		}
	}

	if !versionSeen {
		return nil, core.NewError(core.ErrMissingVersion, path, "source has no #version directive")
	}

	src.Vertex = strings.Join(append(append([]string{}, prelude...), vertex...), "\n")
	src.Fragment = strings.Join(append(append([]string{}, prelude...), fragment...), "\n")

	return src, nil
}

func parseParameter(path string, m []string) (Parameter, error) {
	p := Parameter{Name: m[1], Desc: m[2]}
	var err error
	if p.Init, err = strconv.ParseFloat(m[3], 64); err != nil {
		return p, core.NewError(core.ErrInvalidParameterPragma, path, "parameter %q: invalid init %q", p.Name, m[3])
	}
	if p.Min, err = strconv.ParseFloat(m[4], 64); err != nil {
		return p, core.NewError(core.ErrInvalidParameterPragma, path, "parameter %q: invalid min %q", p.Name, m[4])
	}
	if p.Max, err = strconv.ParseFloat(m[5], 64); err != nil {
		return p, core.NewError(core.ErrInvalidParameterPragma, path, "parameter %q: invalid max %q", p.Name, m[5])
	}
	if m[6] != "" {
		if p.Step, err = strconv.ParseFloat(m[6], 64); err != nil {
			return p, core.NewError(core.ErrInvalidParameterPragma, path, "parameter %q: invalid step %q", p.Name, m[6])
		}
	}
	return p, nil
}

// expandIncludes reads path and recursively splices #include "REL" targets
// inline, returning the fully expanded line list. seen holds canonicalized
// paths currently on the inclusion stack; revisiting one fails IncludeError
// per spec §4.B step 2 (modeled here as ErrIncludeNotFound since the spec
// does not carry a distinct cycle error code).
func expandIncludes(path string, seen map[string]bool) ([]string, error) {
	canon, err := filepath.Abs(path)
	if err != nil {
		canon = path
	}
	if seen[canon] {
		return nil, core.NewError(core.ErrIncludeNotFound, path, "include cycle detected")
	}
	seen[canon] = true
	defer delete(seen, canon)

	f, err := os.Open(path)
	if err != nil {
		return nil, core.NewError(core.ErrIncludeNotFound, path, "%v", err)
	}
	defer f.Close()

	var out []string
	base := filepath.Dir(path)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		ln := scanner.Text()
		if m := includeRe.FindStringSubmatch(ln); m != nil {
			incPath := filepath.Join(base, m[1])
			incLines, err := expandIncludes(incPath, seen)
			if err != nil {
				return nil, err
			}
			out = append(out, incLines...)
			continue
		}
		out = append(out, ln)
	}
	if err := scanner.Err(); err != nil {
		return nil, core.NewError(core.ErrIncludeNotFound, path, "%v", err)
	}
	return out, nil
}
