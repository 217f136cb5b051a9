// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert dispatches ebook conversions. A request names a source and
// target format; the dispatcher looks the pair up in a fixed table of
// read-then-write paths, runs it inside a throwaway workspace, and reports
// every failure as a *Error.
package convert

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/pdiddy/ebook-converter/pkg/types"
)

// Pair is an ordered (source, target) format combination.
type Pair struct {
	Source types.Format `json:"source" yaml:"source"`
	Target types.Format `json:"target" yaml:"target"`
}

func (p Pair) String() string {
	return string(p.Source) + " -> " + string(p.Target)
}

type conversionPath struct {
	read  readFunc
	write writeFunc
}

// conversionPaths is the fixed table of supported pairs. Same-format requests
// never reach it.
var conversionPaths = map[Pair]conversionPath{
	{types.FormatEPUB, types.FormatMOBI}: {read: readEPUB, write: writeMOBI},
	{types.FormatEPUB, types.FormatAZW3}: {read: readEPUB, write: writeAZW3},
	{types.FormatMOBI, types.FormatEPUB}: {read: readPalmDB(types.FormatMOBI), write: writeEPUB},
	{types.FormatAZW3, types.FormatEPUB}: {read: readPalmDB(types.FormatAZW3), write: writeEPUB},
	{types.FormatAZW3, types.FormatMOBI}: {read: readPalmDB(types.FormatAZW3), write: writeMOBI},
}

// rejectedPairs are valid format combinations that are refused by name.
var rejectedPairs = map[Pair]string{
	{types.FormatMOBI, types.FormatAZW3}: "mobi to azw3 has no conversion path in the conversion library",
}

// SupportedPairs lists the table's pairs in format display order.
func SupportedPairs() []Pair {
	order := make(map[types.Format]int)
	for i, f := range types.Formats() {
		order[f] = i
	}
	pairs := make([]Pair, 0, len(conversionPaths))
	for p := range conversionPaths {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Source != pairs[j].Source {
			return order[pairs[i].Source] < order[pairs[j].Source]
		}
		return order[pairs[i].Target] < order[pairs[j].Target]
	})
	return pairs
}

// Dispatcher runs conversion requests against a Backend. It holds no
// per-request state; every call gets its own workspace.
type Dispatcher struct {
	backend Backend
	fs      afero.Fs
	tempDir string
	log     *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithFs sets the filesystem used for workspaces. The default is the OS
// filesystem, which is what real backends need.
func WithFs(fs afero.Fs) Option {
	return func(d *Dispatcher) { d.fs = fs }
}

// WithTempDir sets the parent directory for workspaces.
func WithTempDir(dir string) Option {
	return func(d *Dispatcher) { d.tempDir = dir }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// NewDispatcher creates a dispatcher that writes through backend.
func NewDispatcher(backend Backend, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		backend: backend,
		fs:      afero.NewOsFs(),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Convert turns req into exactly one converted artifact, or returns a *Error.
// Output name and formats are checked before any file is written, and the
// workspace is gone by the time Convert returns.
func (d *Dispatcher) Convert(req Request) (*types.Artifact, error) {
	start := time.Now()
	art, err := d.convert(req)
	d.logOutcome(req, art, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return art, nil
}

func (d *Dispatcher) convert(req Request) (*types.Artifact, *Error) {
	name, err := ValidateOutputName(req.OutputName)
	if err != nil {
		return nil, invalidRequest(err.Error())
	}
	if !req.Target.Valid() {
		return nil, &Error{
			Kind:   KindInvalidRequest,
			Target: req.Target,
			Detail: fmt.Sprintf("target format %q not supported (supported: %s)", req.Target, types.FormatList()),
		}
	}

	src, err := req.sourceFormat()
	if err != nil {
		return nil, &Error{Kind: KindUnsupportedInputFormat, Target: req.Target, Detail: err.Error()}
	}

	if src == req.Target {
		return &types.Artifact{Data: bytes.Clone(req.Data), Format: src, Name: name}, nil
	}

	pair := Pair{src, req.Target}
	path, ok := conversionPaths[pair]
	if !ok {
		return nil, &Error{Kind: KindUnsupportedPair, Source: src, Target: req.Target, Detail: rejectedPairs[pair]}
	}

	data, err := d.run(path, pair, req.Data)
	if err != nil {
		return nil, &Error{Kind: KindConversionFailed, Source: src, Target: req.Target, Detail: err.Error(), Err: err}
	}
	return &types.Artifact{Data: data, Format: req.Target, Name: name}, nil
}

// run stages data, runs the path's reader and writer, and returns the output
// bytes. Panics from the reader, writer or backend are returned as errors.
func (d *Dispatcher) run(path conversionPath, pair Pair, data []byte) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during conversion: %v", r)
		}
	}()

	ws, err := newWorkspace(d.fs, d.tempDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := ws.release(); rerr != nil && err == nil {
			out, err = nil, rerr
		}
	}()

	input, err := ws.stage("input."+string(pair.Source), data)
	if err != nil {
		return nil, err
	}

	book, err := path.read(d.fs, input)
	if err != nil {
		return nil, err
	}
	d.log.Debug("input accepted",
		zap.String("format", string(book.Format)),
		zap.String("title", book.Title),
		zap.Strings("authors", book.Authors),
		zap.String("language", book.Language),
	)

	outName := "output." + string(pair.Target)
	if err := path.write(d.backend, book, ws.path(outName)); err != nil {
		return nil, err
	}

	out, err = ws.read(outName)
	if err != nil {
		return nil, fmt.Errorf("%s produced no output: %w", d.backend.Name(), err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s produced empty output", d.backend.Name())
	}
	return out, nil
}

func (d *Dispatcher) logOutcome(req Request, art *types.Artifact, err *Error, took time.Duration) {
	fields := []zap.Field{
		zap.String("filename", req.Filename),
		zap.String("target", string(req.Target)),
		zap.Int("input_bytes", len(req.Data)),
		zap.Duration("took", took),
	}
	if err != nil {
		fields = append(fields, zap.String("kind", string(err.Kind)), zap.String("error", err.Error()))
		if err.Kind == KindConversionFailed {
			d.log.Error("conversion failed", fields...)
			return
		}
		d.log.Warn("conversion rejected", fields...)
		return
	}
	fields = append(fields, zap.String("output", art.FileName()), zap.Int("output_bytes", art.Size()))
	d.log.Info("conversion finished", fields...)
}
