//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Info runs the preset-summary CLI against a .slangp file.
func (Run) Info(presetPath string) error {
	fmt.Println("Run preset info...")
	if _, err := executeCmd("go", withArgs("run", ".", presetPath), withStream()); err != nil {
		return err
	}
	return nil
}

// Test runs the full test suite.
func (Run) Test() error {
	fmt.Println("Run tests...")
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
