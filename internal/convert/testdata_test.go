// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const testOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>The Time Machine</dc:title>
    <dc:creator>H. G. Wells</dc:creator>
    <dc:language>en</dc:language>
    <dc:identifier id="uid">urn:uuid:0c2f3a1e-5d7b-4b8e-9a51-1f0e2d3c4b5a</dc:identifier>
  </metadata>
  <manifest>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="ch1"/>
  </spine>
</package>`

const testChapter = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>I</title></head>
<body><p>The Time Traveller was expounding a recondite matter to us.</p></body></html>`

// buildEPUB returns the bytes of a small well-formed ePub 2 archive with
// mimetype as the first entry.
func buildEPUB(t *testing.T) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	entries := []struct{ name, body string }{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", testContainerXML},
		{"OEBPS/content.opf", testOPF},
		{"OEBPS/ch1.xhtml", testChapter},
	}
	for _, e := range entries {
		fw, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, e.body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// buildPalmDB returns a minimal Mobipocket PalmDB header named name.
func buildPalmDB(name string) []byte {
	hdr := make([]byte, palmHeaderLen+16)
	copy(hdr, name)
	copy(hdr[palmTypeOffset:], palmMagic)
	return hdr
}

// fakeBackend writes canned output to dst on the shared filesystem, or fails.
type fakeBackend struct {
	fs       afero.Fs
	output   []byte
	err      error
	panicMsg string
	calls    []fakeCall
}

type fakeCall struct {
	src, dst string
	extra    []string
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Convert(src, dst string, extra ...string) error {
	f.calls = append(f.calls, fakeCall{src: src, dst: dst, extra: extra})
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return f.err
	}
	return afero.WriteFile(f.fs, dst, f.output, 0o644)
}

// newTestDispatcher returns a dispatcher on an in-memory filesystem whose
// workspaces live under /tmp/work.
func newTestDispatcher(t *testing.T, b *fakeBackend) (*Dispatcher, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/tmp/work", 0o755))
	b.fs = fs
	return NewDispatcher(b, WithFs(fs), WithTempDir("/tmp/work")), fs
}

// requireNoWorkspaces asserts the workspace parent is empty.
func requireNoWorkspaces(t *testing.T, fs afero.Fs, dir string) {
	t.Helper()
	entries, err := afero.ReadDir(fs, dir)
	require.NoError(t, err)
	require.Empty(t, entries, "workspace left behind")
}
