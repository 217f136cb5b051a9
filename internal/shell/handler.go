// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package shell is the interactive web page in front of the format
// dispatcher: upload a file, pick a target format, name the output, and
// download the result.
package shell

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"github.com/pdiddy/ebook-converter/internal/convert"
	"github.com/pdiddy/ebook-converter/pkg/types"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to disk.
const multipartMemory = 8 << 20

// Converter runs one conversion request.
type Converter interface {
	Convert(req convert.Request) (*types.Artifact, error)
}

// Handler serves the shell. Conversions are serialized: one runs to
// completion before the next one starts.
type Handler struct {
	conv      Converter
	cfg       types.ServerConfig
	log       *zap.Logger
	downloads *downloads

	convertMu sync.Mutex
}

// NewHandler creates a shell over conv. Zero-valued config fields take their
// defaults.
func NewHandler(conv Converter, cfg types.ServerConfig, log *zap.Logger) *Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = types.DefaultMaxUploadBytes
	}
	if cfg.DownloadTTL <= 0 {
		cfg.DownloadTTL = types.DefaultDownloadTTL
	}
	if cfg.DefaultOutputName == "" {
		cfg.DefaultOutputName = types.DefaultOutputName
	}
	if cfg.MaxPendingDownloads <= 0 {
		cfg.MaxPendingDownloads = types.DefaultMaxPendingDownloads
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		conv:      conv,
		cfg:       cfg,
		log:       log,
		downloads: newDownloads(cfg.DownloadTTL, cfg.MaxPendingDownloads),
	}
}

// Run discards expired downloads in the background until ctx is done.
func (h *Handler) Run(ctx context.Context) {
	h.downloads.run(ctx, sweepInterval(h.cfg.DownloadTTL))
}

// Routes returns the shell's router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Post("/convert", h.convertPage)
	r.Get("/download/{token}", h.download)
	r.Post("/api/convert", h.convertAPI)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, newPage(h.cfg.DefaultOutputName), http.StatusOK)
}

func (h *Handler) convertPage(w http.ResponseWriter, r *http.Request) {
	page := newPage(h.cfg.DefaultOutputName)

	form, err := h.readForm(w, r)
	if form != nil {
		if form.Target.Valid() {
			page.Target = form.Target
		}
		page.OutputName = form.Name
	}
	if errors.Is(err, errNoUpload) {
		h.renderPage(w, r, page, http.StatusOK)
		return
	}
	if err != nil {
		page.fail(userMessage(err))
		h.renderPage(w, r, page, statusFor(err))
		return
	}

	art, err := h.run(form)
	if err != nil {
		page.fail(userMessage(err))
		h.renderPage(w, r, page, statusFor(err))
		return
	}

	tok := h.downloads.put(art)
	page.succeed(art, "/download/"+tok)
	h.renderPage(w, r, page, http.StatusOK)
}

func (h *Handler) convertAPI(w http.ResponseWriter, r *http.Request) {
	form, err := h.readForm(w, r)
	if err == nil {
		var art *types.Artifact
		art, err = h.run(form)
		if err == nil {
			writeArtifact(w, art)
			return
		}
	}
	if errors.Is(err, errNoUpload) {
		err = &convert.Error{Kind: convert.KindInvalidRequest, Detail: "missing file upload"}
	}
	writeJSONError(w, err)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	art, ok := h.downloads.take(chi.URLParam(r, "token"))
	if !ok {
		http.Error(w, "download not found or already taken", http.StatusNotFound)
		return
	}
	writeArtifact(w, art)
}

// run invokes the dispatcher exactly once for a validated form.
func (h *Handler) run(form *convertForm) (*types.Artifact, error) {
	h.convertMu.Lock()
	defer h.convertMu.Unlock()

	return h.conv.Convert(convert.Request{
		Data:       form.Data,
		Filename:   form.Filename,
		Target:     form.Target,
		OutputName: form.Name,
	})
}

var errNoUpload = errors.New("no file uploaded")

type convertForm struct {
	Filename string       `json:"file"`
	Data     []byte       `json:"-"`
	Target   types.Format `json:"target"`
	Name     string       `json:"name"`
}

// Validate checks the selections before the dispatcher is called.
func (f *convertForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Target, validation.Required, validation.In(formatValues()...)),
		validation.Field(&f.Name, validation.By(func(v interface{}) error {
			_, err := convert.ValidateOutputName(v.(string))
			return err
		})),
	)
}

func formatValues() []interface{} {
	vals := make([]interface{}, 0, len(types.Formats()))
	for _, f := range types.Formats() {
		vals = append(vals, f)
	}
	return vals
}

// readForm parses the multipart upload. It returns the partially filled
// form alongside any error so the page can echo the user's selections.
func (h *Handler) readForm(w http.ResponseWriter, r *http.Request) (*convertForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &convert.Error{
				Kind:   convert.KindInvalidRequest,
				Detail: "upload exceeds " + strconv.FormatInt(h.cfg.MaxUploadBytes, 10) + " bytes",
			}
		}
		return nil, &convert.Error{Kind: convert.KindInvalidRequest, Detail: "invalid form: " + err.Error()}
	}

	form := &convertForm{
		Target: types.Format(strings.ToLower(strings.TrimSpace(r.FormValue("target")))),
		Name:   r.FormValue("name"),
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return form, errNoUpload
	}
	defer file.Close()

	if err := form.Validate(); err != nil {
		return form, &convert.Error{Kind: convert.KindInvalidRequest, Detail: err.Error()}
	}

	form.Filename = header.Filename
	form.Data, err = io.ReadAll(file)
	if err != nil {
		return form, &convert.Error{Kind: convert.KindInvalidRequest, Detail: "reading upload: " + err.Error()}
	}
	return form, nil
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, page *Page, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.render(w); err != nil {
		loggerFrom(r.Context(), h.log).Error("rendering page", zap.Error(err))
	}
}

func writeArtifact(w http.ResponseWriter, art *types.Artifact) {
	w.Header().Set("Content-Type", art.MIMEType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.FileName()))
	w.Header().Set("Content-Length", strconv.Itoa(art.Size()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}

type apiError struct {
	Kind    convert.Kind `json:"kind"`
	Message string       `json:"message"`
}

func writeJSONError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(err))
	_ = json.NewEncoder(w).Encode(apiError{Kind: convert.KindOf(err), Message: err.Error()})
}

// statusFor maps a dispatcher error kind to an HTTP status.
func statusFor(err error) int {
	switch convert.KindOf(err) {
	case convert.KindInvalidRequest, convert.KindUnsupportedInputFormat:
		return http.StatusBadRequest
	case convert.KindUnsupportedPair:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// userMessage phrases err for the page.
func userMessage(err error) string {
	switch convert.KindOf(err) {
	case convert.KindInvalidRequest:
		return "Please check your input: " + err.Error()
	case convert.KindConversionFailed:
		return "An error occurred during conversion: " + err.Error()
	}
	return "Error: " + err.Error()
}
