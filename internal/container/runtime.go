// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container detects a docker or podman runtime and runs one-shot
// conversion containers with piped stdin and stdout.
package container

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Runtime is a container engine able to run a converter image.
type Runtime interface {
	// Name is the engine binary, "docker" or "podman".
	Name() string

	// Available is true when the binary is on PATH and its daemon answers.
	Available() bool

	// ImageExists returns nil when image is present locally, so a Word
	// conversion never triggers a pull.
	ImageExists(image string) error

	// Run feeds stdin to a throwaway, network-less container of image and
	// copies its stdout. A canceled ctx kills the container client.
	Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer) error
}

// executor is the process seam replaced in tests.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// runtime is a Runtime for one engine binary. Engines differ only in the
// subcommand that probes for a local image.
type runtime struct {
	bin       string
	probeArgs []string
	exec      executor
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available() bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(r.bin, "info") == nil
}

func (r *runtime) ImageExists(image string) error {
	args := append(append([]string(nil), r.probeArgs...), image)
	if err := r.exec.RunSilent(r.bin, args...); err != nil {
		return fmt.Errorf("%s has no local image %s: %w", r.bin, image, err)
	}
	return nil
}

func (r *runtime) Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	err := r.exec.RunPiped(ctx, r.bin, []string{"run", "--rm", "-i", "--network", "none", image}, stdin, stdout, &stderr)
	if err == nil {
		return nil
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return fmt.Errorf("converter container %s (%s): %w: %s", image, r.bin, err, msg)
	}
	return fmt.Errorf("converter container %s (%s): %w", image, r.bin, err)
}

// engines lists the supported binaries in detection order.
var engines = []struct {
	bin       string
	probeArgs []string
}{
	{bin: binDocker, probeArgs: []string{"image", "inspect"}},
	{bin: binPodman, probeArgs: []string{"image", "exists"}},
}

var defaultExec = &osExecutor{}

// DetectRuntime returns the first working engine, docker before podman.
func DetectRuntime() (Runtime, error) {
	return detectRuntime(defaultExec)
}

func detectRuntime(exec executor) (Runtime, error) {
	for _, e := range engines {
		r := &runtime{bin: e.bin, probeArgs: e.probeArgs, exec: exec}
		if r.Available() {
			return r, nil
		}
	}
	return nil, fmt.Errorf("no usable container engine: tried %s and %s", binDocker, binPodman)
}
