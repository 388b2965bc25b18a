//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const shaderDir = "assets/shaders"

// Compiles the GLSL shaders to SPIR-V with glslc. The running engine picks
// the new binaries up from disk.
func (Build) Shaders() error {
	if _, err := executeCmd("glslc", withArgs("shader.vert", "-o", "vert.spv"), withDir(shaderDir), withStream()); err != nil {
		return err
	}
	if _, err := executeCmd("glslc", withArgs("shader.frag", "-o", "frag.spv"), withDir(shaderDir), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the unit tests of every package.
func (Build) Test() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}
