// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/pdiddy/ebook-converter/pkg/types"
)

const maxOutputNameLen = 200

// outputNamePattern rejects path separators and control characters.
var outputNamePattern = regexp.MustCompile(`^[^/\\\x00-\x1f\x7f]+$`)

// Request is one conversion request: the uploaded bytes plus what to turn
// them into. It carries everything the dispatcher needs, so no state is kept
// between calls.
type Request struct {
	// Data is the uploaded ebook content.
	Data []byte

	// Filename is the name the upload arrived with. Its suffix determines
	// the source format when Source is empty.
	Filename string

	// Source overrides the format inferred from Filename.
	Source types.Format

	// Target is the requested output format.
	Target types.Format

	// OutputName is the download name without extension.
	OutputName string
}

// sourceFormat returns the declared source format, or infers it from the
// filename suffix.
func (r Request) sourceFormat() (types.Format, error) {
	if r.Source != "" {
		return types.ParseFormat(string(r.Source))
	}
	return types.FormatFromFilename(r.Filename)
}

// ValidateOutputName trims name and checks it is usable as a download name.
func ValidateOutputName(name string) (string, error) {
	name = strings.TrimSpace(name)
	err := validation.Validate(name,
		validation.Required.Error("output name must not be empty"),
		validation.RuneLength(1, maxOutputNameLen),
		validation.Match(outputNamePattern).Error("output name must not contain path separators or control characters"),
		validation.By(func(v interface{}) error {
			if strings.Contains(v.(string), "..") {
				return errors.New("output name must not contain \"..\"")
			}
			return nil
		}),
	)
	if err != nil {
		return "", err
	}
	return name, nil
}
