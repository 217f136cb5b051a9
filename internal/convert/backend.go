// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pdiddy/ebook-converter/internal/container"
	"github.com/pdiddy/ebook-converter/pkg/types"
)

// Backend serializes a staged book into another format. src and dst are
// paths in the same directory; extra carries format-specific options.
type Backend interface {
	Name() string
	Convert(src, dst string, extra ...string) error
}

// writeFunc is the serialize half of a conversion path.
type writeFunc func(b Backend, book *Book, dst string) error

func writeEPUB(b Backend, book *Book, dst string) error {
	return b.Convert(book.Path, dst)
}

func writeMOBI(b Backend, book *Book, dst string) error {
	return b.Convert(book.Path, dst, "--output-profile", "kindle")
}

func writeAZW3(b Backend, book *Book, dst string) error {
	return b.Convert(book.Path, dst, "--output-profile", "kindle_pw3")
}

// Runner executes ebook-convert with args inside workDir, writing its
// combined output to out.
type Runner interface {
	Name() string
	Run(workDir string, args []string, out io.Writer) error
}

// Calibre is the Backend built on calibre's ebook-convert. Files are passed
// by base name relative to their shared directory so the same arguments
// work on the host and inside a container.
type Calibre struct {
	runner Runner
}

// NewCalibre creates a calibre backend on top of r.
func NewCalibre(r Runner) *Calibre {
	return &Calibre{runner: r}
}

func (c *Calibre) Name() string { return "calibre/" + c.runner.Name() }

func (c *Calibre) Convert(src, dst string, extra ...string) error {
	dir := filepath.Dir(src)
	if filepath.Dir(dst) != dir {
		return fmt.Errorf("source %s and destination %s must share a directory", src, dst)
	}

	args := make([]string, 0, 2+len(extra))
	args = append(args, filepath.Base(src), filepath.Base(dst))
	args = append(args, extra...)

	var out bytes.Buffer
	if err := c.runner.Run(dir, args, &out); err != nil {
		if tail := lastLine(out.String()); tail != "" {
			return fmt.Errorf("ebook-convert via %s: %w: %s", c.runner.Name(), err, tail)
		}
		return fmt.Errorf("ebook-convert via %s: %w", c.runner.Name(), err)
	}
	return nil
}

// lastLine returns the last non-blank line of s; ebook-convert prints the
// reason for a failure there.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// commandRunner abstracts process execution for testing.
type commandRunner interface {
	LookPath(file string) (string, error)
	Run(dir, name string, args []string, out io.Writer) error
}

type osCommandRunner struct{}

func (osCommandRunner) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (osCommandRunner) Run(dir, name string, args []string, out io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
}

// LocalRunner runs an ebook-convert binary installed on the host.
type LocalRunner struct {
	bin  string
	exec commandRunner
}

// NewLocalRunner resolves bin on PATH and returns a runner for it.
func NewLocalRunner(bin string) (*LocalRunner, error) {
	return newLocalRunner(bin, osCommandRunner{})
}

func newLocalRunner(bin string, exec commandRunner) (*LocalRunner, error) {
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%s not found on PATH (install calibre or use the container backend): %w", bin, err)
	}
	return &LocalRunner{bin: path, exec: exec}, nil
}

func (l *LocalRunner) Name() string { return "local" }

func (l *LocalRunner) Run(workDir string, args []string, out io.Writer) error {
	return l.exec.Run(workDir, l.bin, args, out)
}

// containerWorkDir is where the workspace is mounted inside the container.
const containerWorkDir = "/work"

// ContainerRunner runs ebook-convert inside a container image through a
// docker or podman runtime.
type ContainerRunner struct {
	runtime container.Runtime
	image   string
}

// NewContainerRunner creates a runner for image. It verifies that the image
// exists locally before returning.
func NewContainerRunner(rt container.Runtime, image string) (*ContainerRunner, error) {
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("calibre image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerRunner{runtime: rt, image: image}, nil
}

func (c *ContainerRunner) Name() string { return c.runtime.Name() }

func (c *ContainerRunner) Run(workDir string, args []string, out io.Writer) error {
	opts := container.RunOptions{
		Mounts:  []container.Mount{{Host: workDir, Container: containerWorkDir}},
		WorkDir: containerWorkDir,
	}
	full := append([]string{types.DefaultBinary}, args...)
	return c.runtime.Run(c.image, opts, full, out)
}

// LazyBackend builds its backend on the first conversion that needs one, so
// requests that are rejected or copied never look for ebook-convert. A
// failed build is retried on the next call.
type LazyBackend struct {
	name  string
	build func() (Backend, error)

	mu      sync.Mutex
	backend Backend
}

// NewLazyBackend defers NewBackend(cfg) until first use.
func NewLazyBackend(cfg types.ConversionConfig) *LazyBackend {
	kind := cfg.Backend
	if kind == "" {
		kind = types.BackendLocal
	}
	return newLazyBackend("calibre/"+string(kind), func() (Backend, error) {
		return NewBackend(cfg)
	})
}

func newLazyBackend(name string, build func() (Backend, error)) *LazyBackend {
	return &LazyBackend{name: name, build: build}
}

// Resolve returns the underlying backend, building it if needed.
func (l *LazyBackend) Resolve() (Backend, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.backend != nil {
		return l.backend, nil
	}
	b, err := l.build()
	if err != nil {
		return nil, err
	}
	l.backend = b
	return b, nil
}

func (l *LazyBackend) Name() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.backend != nil {
		return l.backend.Name()
	}
	return l.name
}

func (l *LazyBackend) Convert(src, dst string, extra ...string) error {
	b, err := l.Resolve()
	if err != nil {
		return err
	}
	return b.Convert(src, dst, extra...)
}

// NewBackend builds the backend selected by cfg.
func NewBackend(cfg types.ConversionConfig) (Backend, error) {
	switch cfg.Backend {
	case types.BackendLocal, "":
		bin := cfg.Binary
		if bin == "" {
			bin = types.DefaultBinary
		}
		r, err := NewLocalRunner(bin)
		if err != nil {
			return nil, err
		}
		return NewCalibre(r), nil
	case types.BackendContainer:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		image := cfg.Image
		if image == "" {
			image = types.DefaultImage
		}
		r, err := NewContainerRunner(rt, image)
		if err != nil {
			return nil, err
		}
		return NewCalibre(r), nil
	}
	return nil, fmt.Errorf("unknown conversion backend %q (want %s or %s)",
		cfg.Backend, types.BackendLocal, types.BackendContainer)
}
