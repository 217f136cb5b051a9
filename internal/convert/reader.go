// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"io"

	"github.com/simp-lee/epub"
	"github.com/spf13/afero"

	"github.com/pdiddy/ebook-converter/pkg/types"
)

// Book is a staged input that a reader has accepted. Metadata fields are
// best-effort and may be empty.
type Book struct {
	Format   types.Format
	Path     string
	Title    string
	Authors  []string
	Language string
}

// readFunc is the parse half of a conversion path.
type readFunc func(fs afero.Fs, path string) (*Book, error)

// readEPUB opens the staged file with the epub library. DRM-protected and
// structurally unreadable archives are rejected here, before the writer runs.
func readEPUB(fs afero.Fs, path string) (*Book, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening epub %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat epub %s: %w", path, err)
	}

	eb, err := epub.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("reading epub: %w", err)
	}
	defer eb.Close()

	md := eb.Metadata()
	book := &Book{Format: types.FormatEPUB, Path: path}
	if len(md.Titles) > 0 {
		book.Title = md.Titles[0]
	}
	for _, a := range md.Authors {
		book.Authors = append(book.Authors, a.Name)
	}
	if len(md.Language) > 0 {
		book.Language = md.Language[0]
	}
	return book, nil
}

// Mobipocket and KF8 (azw3) files are PalmDB databases; the type and creator
// fields at offset 60 read "BOOKMOBI".
const (
	palmHeaderLen  = 78
	palmNameLen    = 32
	palmTypeOffset = 60
	palmMagic      = "BOOKMOBI"
)

// readPalmDB returns a reader that identifies a Mobipocket container by its
// PalmDB header. The rest of the file is left to the conversion backend.
func readPalmDB(format types.Format) readFunc {
	return func(fs afero.Fs, path string) (*Book, error) {
		f, err := fs.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s %s: %w", format, path, err)
		}
		defer f.Close()

		hdr := make([]byte, palmHeaderLen)
		if _, err := io.ReadFull(f, hdr); err != nil {
			return nil, fmt.Errorf("reading %s header: file too short: %w", format, err)
		}
		if string(hdr[palmTypeOffset:palmTypeOffset+len(palmMagic)]) != palmMagic {
			return nil, fmt.Errorf("reading %s header: not a Mobipocket container", format)
		}

		name := hdr[:palmNameLen]
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		return &Book{Format: format, Path: path, Title: string(name)}, nil
	}
}
