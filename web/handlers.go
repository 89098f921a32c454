package web

import (
	"bytes"
	"io"
	"log"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/mogaika/dae_exporter/config"
	"github.com/mogaika/dae_exporter/export"
	"github.com/mogaika/dae_exporter/export/doc"
	"github.com/mogaika/dae_exporter/scene"
	"github.com/mogaika/dae_exporter/status"
	"github.com/mogaika/dae_exporter/webutils"
)

// DiagnosticsHeader carries the number of recoverable export problems.
const DiagnosticsHeader = "X-Export-Diagnostics"

const maxSceneSize = 64 << 20

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// readScene returns the uploaded scene and its file name, either from the
// multipart field "scene" or from the raw body.
func readScene(r *http.Request) (io.ReadCloser, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, "scene.yaml", nil
	}
	f, header, err := r.FormFile("scene")
	if err != nil {
		return nil, "", errors.Wrapf(err, "Failed to get file")
	}
	return f, path.Base(header.Filename), nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// requestOptions applies query overrides to the server defaults.
func requestOptions(r *http.Request, format string) (config.Options, error) {
	opts := ServerOptions
	opts.Format = format
	q := r.URL.Query()
	if v := q.Get("lines"); v != "" {
		lines, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.Wrapf(err, "lines")
		}
		opts.Lines = lines
	}
	if v := q.Get("digits"); v != "" {
		digits, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.Wrapf(err, "digits")
		}
		opts.FloatDigits = digits
	}
	if v := q.Get("up"); v != "" {
		opts.UpAxis = v
	}
	if v := q.Get("encoding"); v != "" {
		opts.Encoding = v
	}
	return opts, opts.Validate()
}

func HandlerExport(w http.ResponseWriter, r *http.Request) {
	format := mux.Vars(r)["format"]
	f, err := doc.LookupFormat(format)
	if err != nil {
		webutils.WriteError(w, http.StatusNotFound, err)
		return
	}
	opts, err := requestOptions(r, format)
	if err != nil {
		webutils.WriteError(w, http.StatusBadRequest, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSceneSize)
	in, name, err := readScene(r)
	if err != nil {
		webutils.WriteError(w, http.StatusBadRequest, err)
		return
	}
	defer in.Close()

	var src io.Reader = in
	if enc, _ := config.LookupEncoding(opts.Encoding); enc != nil {
		src = enc.NewDecoder().Reader(in)
	}
	model, err := scene.Load(src)
	if err != nil {
		status.Error("Failed to load %s: %v", name, err)
		webutils.WriteError(w, http.StatusBadRequest, err)
		return
	}

	job := &export.Job{
		Options:  opts,
		Select:   splitList(r.URL.Query().Get("select")),
		Paths:    splitList(r.URL.Query().Get("path")),
		Filename: name,
	}
	status.Progress(0, "Exporting %s as %s", name, format)

	var buf bytes.Buffer
	d, err := job.Run(model, &buf)
	if err != nil {
		status.Error("Export of %s failed: %v", name, err)
		code := http.StatusInternalServerError
		if export.IsSelectionError(err) {
			code = http.StatusBadRequest
		}
		webutils.WriteError(w, code, err)
		return
	}

	for _, diag := range d.Diagnostics {
		status.Diagnostic("%s: %v", name, diag)
	}
	status.Progress(1, "Exported %s: %d bytes, %d diagnostics", name, buf.Len(), len(d.Diagnostics))

	w.Header().Set(DiagnosticsHeader, strconv.Itoa(len(d.Diagnostics)))
	base := strings.TrimSuffix(name, path.Ext(name))
	webutils.WriteFile(w, &buf, base+f.Extension, f.ContentType)
}

type jsonFormat struct {
	Name        string `json:"name"`
	Extension   string `json:"extension"`
	ContentType string `json:"content_type"`
}

func HandlerFormats(w http.ResponseWriter, r *http.Request) {
	var list []jsonFormat
	for _, f := range doc.Formats() {
		list = append(list, jsonFormat{Name: f.Name, Extension: f.Extension, ContentType: f.ContentType})
	}
	webutils.WriteJson(w, list)
}

func HandlerEncodings(w http.ResponseWriter, r *http.Request) {
	webutils.WriteJson(w, config.ListEncodings())
}

func HandlerStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] ws upgrade error: %v", err)
		return
	}
	status.Default.Register(conn)
}
