//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// buildFixtures compiles every spirv/testdata/*.vert and *.frag GLSL
// source into a .spv file beside it using glslc. The package tests do not
// read these files; they encode their SPIR-V modules by hand.
func buildFixtures() error {
	fmt.Println("Build SPIR-V fixtures...")
	vertSources, err := filepath.Glob("spirv/testdata/*.vert")
	if err != nil {
		return err
	}
	fragSources, err := filepath.Glob("spirv/testdata/*.frag")
	if err != nil {
		return err
	}
	for _, src := range vertSources {
		if _, err := executeCmd("glslc", withArgs("-fshader-stage=vert", src, "-o", src+".spv"), withStream()); err != nil {
			return err
		}
	}
	for _, src := range fragSources {
		if _, err := executeCmd("glslc", withArgs("-fshader-stage=frag", src, "-o", src+".spv"), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// Fixtures regenerates spirv/testdata's binary SPIR-V fixtures.
func (Build) Fixtures() error {
	return buildFixtures()
}
