//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the headless player into bin/.
func (Build) Ketsji() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/ketsji", "./cmd/ketsji"), withStream())
	return err
}

// Builds the library tool into bin/.
func (Build) Libtool() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/libtool", "./cmd/libtool"), withStream())
	return err
}

// Builds every command.
func (Build) All() {
	mg.Deps(Build.Ketsji, Build.Libtool)
}
