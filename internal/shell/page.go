// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package shell

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/pdiddy/ebook-converter/pkg/types"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// Status is what the page is currently showing. Exactly one is rendered.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusError   Status = "error"
	StatusSuccess Status = "success"
)

const idlePrompt = "Please upload an ebook file to begin the conversion."

// Page is the state of the shell for one request. It is built fresh for
// every request and never shared.
type Page struct {
	Status       Status
	Message      string
	Formats      []types.Format
	Target       types.Format
	OutputName   string
	DownloadURL  string
	DownloadName string
}

func newPage(defaultName string) *Page {
	return &Page{
		Status:     StatusIdle,
		Message:    idlePrompt,
		Formats:    types.Formats(),
		Target:     types.FormatEPUB,
		OutputName: defaultName,
	}
}

func (p *Page) fail(msg string) {
	p.Status = StatusError
	p.Message = msg
	p.DownloadURL, p.DownloadName = "", ""
}

func (p *Page) succeed(art *types.Artifact, url string) {
	p.Status = StatusSuccess
	p.Message = "Successfully converted to " + string(art.Format) + "!"
	p.DownloadURL = url
	p.DownloadName = art.FileName()
}

// FormatList is used by the template header.
func (p *Page) FormatList() string { return types.FormatList() }

// Accept is the file input's accept attribute.
func (p *Page) Accept() string {
	exts := make([]string, 0, len(p.Formats))
	for _, f := range p.Formats {
		exts = append(exts, "."+string(f))
	}
	return strings.Join(exts, ",")
}

func (p *Page) render(w io.Writer) error {
	return pageTemplate.Execute(w, p)
}
