//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/sh"
)

// calibreImage matches the default conversion.image setting.
const calibreImage = "lscr.io/linuxserver/calibre:latest"

// Calibre reports which ebook-convert backends are usable on this machine.
func Calibre() error {
	if p, err := exec.LookPath("ebook-convert"); err == nil {
		fmt.Println("local:     ", p)
	} else {
		fmt.Println("local:      ebook-convert not on PATH")
	}

	rt := containerRuntime()
	if rt == "" {
		fmt.Println("container:  no docker or podman found")
		return nil
	}
	if err := sh.Run(rt, "image", "inspect", calibreImage); err != nil {
		fmt.Printf("container:  %s available, image %s missing (run mage pullCalibre)\n", rt, calibreImage)
		return nil
	}
	fmt.Printf("container:  %s with %s\n", rt, calibreImage)
	return nil
}

// PullCalibre pulls the calibre image used by the container backend.
func PullCalibre() error {
	rt := containerRuntime()
	if rt == "" {
		return fmt.Errorf("no container runtime: install docker or podman")
	}
	image := calibreImage
	if v := os.Getenv("EBOOK_CONVERTER_CONVERSION_IMAGE"); v != "" {
		image = v
	}
	return sh.RunV(rt, "pull", image)
}

func containerRuntime() string {
	for _, bin := range []string{"docker", "podman"} {
		if _, err := exec.LookPath(bin); err == nil {
			return bin
		}
	}
	return ""
}
