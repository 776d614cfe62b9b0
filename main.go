/*
slangchain-info is a small CLI that parses a .slangp preset and prints a
summary of its passes, LUTs and parameters, without requiring a real
SPIR-V compiler to be wired in (component A only, spec §4.A).
*/
package main

import (
	"fmt"
	"os"

	"github.com/retrofx/slangchain/preset"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <preset.slangp>\n", os.Args[0])
		os.Exit(1)
	}

	p, err := preset.Parse(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: %d pass(es), %d LUT(s)\n", os.Args[1], len(p.Passes), len(p.LUTs))
	for i, pass := range p.Passes {
		alias := pass.Alias
		if alias == "" {
			alias = "-"
		}
		fmt.Printf("  pass %d: %s (alias=%s feedback=%v)\n", i, pass.Source, alias, pass.IsFeedback)
	}
	for _, lut := range p.LUTs {
		fmt.Printf("  lut: %s -> %s\n", lut.Name, lut.Source)
	}
	if len(p.ParameterOverrides) > 0 {
		fmt.Printf("  %d parameter override(s)\n", len(p.ParameterOverrides))
	}
}
