// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Artifact is an ebook payload held in memory: an upload on its way into the
// dispatcher or a conversion result on its way out to a download.
type Artifact struct {
	// Data is the raw ebook bytes.
	Data []byte `json:"-" yaml:"-"`

	// Format is the container type of Data.
	Format Format `json:"format" yaml:"format"`

	// Name is the output name without extension (e.g. "book1").
	Name string `json:"name" yaml:"name"`
}

// FileName returns the download name, "<Name>.<Format>".
func (a Artifact) FileName() string {
	return a.Name + "." + string(a.Format)
}

// MIMEType returns the download content type, "application/<Format>".
func (a Artifact) MIMEType() string {
	return "application/" + string(a.Format)
}

// Size returns the payload length in bytes.
func (a Artifact) Size() int {
	return len(a.Data)
}
