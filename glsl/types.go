// Package glsl implements the source preprocessor (spec §4.B): #include
// resolution, #pragma harvesting, and vertex/fragment stage splitting for a
// single .slang source file.
package glsl

import "github.com/retrofx/slangchain/texture"

// Stage identifies which shader stage a block of preprocessed lines belongs
// to.
type Stage int

const (
	StagePrelude Stage = iota // lines before the first #pragma stage directive
	StageVertex
	StageFragment
)

// Parameter is one #pragma parameter declaration.
type Parameter struct {
	Name string
	Desc string
	Init float64
	Min  float64
	Max  float64
	Step float64
}

// Source is the fully preprocessed result of one .slang file: includes
// spliced in, pragmas harvested, lines bucketed by stage.
type Source struct {
	Path   string
	Name   string // from #pragma name, "" when the source declares none
	Format texture.PixelFormat

	Parameters []Parameter

	// Vertex and Fragment are the two emitted stage sources (spec §4.B
	// step 4): shared prelude followed by that stage's lines.
	Vertex   string
	Fragment string
}
