// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

const workspacePrefix = "ebookconv-"

// workspace is the temporary directory owned by a single conversion. The
// staged input and the produced output both live in it, and release removes
// it with everything inside.
type workspace struct {
	fs  afero.Fs
	dir string
}

func newWorkspace(fs afero.Fs, base string) (*workspace, error) {
	dir, err := afero.TempDir(fs, base, workspacePrefix)
	if err != nil {
		return nil, fmt.Errorf("creating workspace under %q: %w", base, err)
	}
	return &workspace{fs: fs, dir: dir}, nil
}

func (w *workspace) path(name string) string {
	return filepath.Join(w.dir, name)
}

// stage writes data to name inside the workspace and returns its path.
func (w *workspace) stage(name string, data []byte) (string, error) {
	p := w.path(name)
	if err := afero.WriteFile(w.fs, p, data, 0o600); err != nil {
		return "", fmt.Errorf("staging %s: %w", name, err)
	}
	return p, nil
}

func (w *workspace) read(name string) ([]byte, error) {
	data, err := afero.ReadFile(w.fs, w.path(name))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

func (w *workspace) release() error {
	if err := w.fs.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("removing workspace %s: %w", w.dir, err)
	}
	return nil
}
