package web

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/ryanshoover/account-statuses/internal/logging"
	"github.com/ryanshoover/account-statuses/internal/pipeline"
	"github.com/ryanshoover/account-statuses/internal/table"
)

// uploadField is the multipart form field carrying the account file.
const uploadField = "accounts-csv"

// outputFilename is the attachment name of the enriched file.
const outputFilename = "account_statuses.csv"

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, nil); err != nil {
		logging.FromContext(r.Context()).Error("rendering index", "error", err)
	}
}

// handleHealth is a liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleProcess accepts an uploaded account file, runs the enrichment
// pipeline, and responds with the finished CSV as a file attachment.
//
// Row-scoped failures (lookup errors, unmatched keys) do not fail the
// request: the affected rows are omitted, counted in the X-Skipped-Rows
// header, and logged per key. A structurally broken file is a 422; a run
// where every row failed is a 502, since the output would be an empty
// table that looks like success.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.limiter.Acquire(ctx); err != nil {
		if errors.Is(err, ErrTooManyUploads) {
			w.Header().Set("Retry-After", "10")
			respondError(w, r, http.StatusServiceUnavailable, err.Error())
		} else {
			respondError(w, r, http.StatusBadRequest, "request cancelled")
		}
		return
	}
	defer s.limiter.Release()

	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondError(w, r, http.StatusRequestEntityTooLarge, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	runID := uuid.NewString()
	log := logging.WithFields(ctx, "run_id", runID, "filename", header.Filename)
	log.Info("processing upload", "size", header.Size)

	var result *pipeline.Result
	if strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		hdr, rows, werr := table.ReadWorkbook(file)
		if werr != nil {
			err = werr
		} else {
			result, err = s.pipeline.RunRows(ctx, hdr, rows)
		}
	} else {
		result, err = s.pipeline.Run(ctx, file)
	}

	if err != nil {
		var parseErr *table.ParseError
		if errors.As(err, &parseErr) {
			respondError(w, r, http.StatusUnprocessableEntity, parseErr.Error())
			return
		}
		respondError(w, r, http.StatusBadGateway, err.Error())
		return
	}

	if result.Rows == 0 && len(result.RowErrors) > 0 {
		respondError(w, r, http.StatusBadGateway,
			fmt.Sprintf("enrichment failed for all %d rows", len(result.RowErrors)))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputFilename))
	w.Header().Set("Cache-Control", "no-store")
	if n := len(result.RowErrors); n > 0 {
		w.Header().Set("X-Skipped-Rows", strconv.Itoa(n))
	}
	w.Write(result.CSV)
}

// respondError logs the failure with request context and returns a plain
// text message. The form posts directly from a browser, so plain text is
// what the user actually sees.
func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logging.FromContext(r.Context()).Error("request failed",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", message,
	)
	http.Error(w, message, status)
}

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<title>Get Account Statuses</title>
<style>
body { font-family: sans-serif; max-width: 44rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
header { border-bottom: 1px solid #ddd; margin-bottom: 1.5rem; }
label { display: block; font-weight: bold; margin-bottom: .25rem; }
.help { color: #666; font-size: .9rem; }
button { margin-top: 1rem; padding: .5rem 1.5rem; }
</style>
</head>
<body>
	<header>
		<h1>Get Account Statuses</h1>
		<p>Upload a CSV file of account information to get each account's current status.</p>
	</header>
	<main>
		<form action="/process" method="post" enctype="multipart/form-data">
			<label for="accounts-csv">Account file</label>
			<input type="file" name="accounts-csv" id="accounts-csv" accept=".csv,.xlsx">
			<p class="help">The file needs a header row labeling every column, with the account ID in the first column. CSV and Excel (.xlsx) files are accepted.</p>
			<button type="submit">Get statuses</button>
		</form>
	</main>
</body>
</html>
`
