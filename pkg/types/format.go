// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared data model: ebook formats, artifacts, and
// configuration.
package types

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies an ebook container type.
type Format string

const (
	FormatEPUB Format = "epub"
	FormatMOBI Format = "mobi"
	FormatAZW3 Format = "azw3"
)

// Formats returns the supported formats in display order.
func Formats() []Format {
	return []Format{FormatEPUB, FormatMOBI, FormatAZW3}
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	switch f {
	case FormatEPUB, FormatMOBI, FormatAZW3:
		return true
	}
	return false
}

func (f Format) String() string { return string(f) }

// ParseFormat converts a user-supplied name such as "EPUB" or ".mobi" to a
// Format. Unknown names are an error.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if !f.Valid() {
		return "", fmt.Errorf("unsupported format %q (supported: %s)", s, FormatList())
	}
	return f, nil
}

// FormatFromFilename infers the format from the filename suffix.
func FormatFromFilename(name string) (Format, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", fmt.Errorf("file %q has no extension (supported: %s)", name, FormatList())
	}
	return ParseFormat(ext)
}

// FormatList renders the supported formats as a comma-separated list.
func FormatList() string {
	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
