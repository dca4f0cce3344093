package web

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ryanshoover/account-statuses/internal/config"
	"github.com/ryanshoover/account-statuses/internal/lookup"
	"github.com/ryanshoover/account-statuses/internal/pipeline"
	"github.com/xuri/excelize/v2"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            8080,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: time.Second,
		},
		Upload: config.UploadConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
		},
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
	}
}

// newTestServer wires a full server against a fake enrichment endpoint.
func newTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()

	enrich := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/")
		switch key {
		case "1":
			fmt.Fprint(w, `{"account_id":1,"status":"active","status_set_on":"2020-01-01"}`)
		case "2":
			fmt.Fprint(w, `{"account_id":2,"status":"inactive","status_set_on":"2019-05-05"}`)
		default:
			http.NotFound(w, r)
		}
	}))

	client := lookup.NewClient(lookup.Config{BaseURL: enrich.URL, Concurrency: 2})
	p := pipeline.New(client, pipeline.Config{})
	srv := NewServer(testConfig(), p)

	ts := httptest.NewServer(srv.Router())
	return ts, func() {
		ts.Close()
		enrich.Close()
	}
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(uploadField, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	mw.Close()
	return &body, mw.FormDataContentType()
}

const wantCSV = "id,name,Status,Status Set On\n" +
	"1,Alice,active,2020-01-01\n" +
	"2,Bob,inactive,2019-05-05\n"

func TestHandleProcess(t *testing.T) {
	ts, done := newTestServer(t)
	defer done()

	body, contentType := multipartBody(t, "accounts.csv", []byte("id,name\n1,Alice\n2,Bob\n"))
	resp, err := http.Post(ts.URL+"/process", contentType, body)
	if err != nil {
		t.Fatalf("POST /process: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", got)
	}
	if got := resp.Header.Get("Content-Disposition"); got != "attachment; filename=account_statuses.csv" {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := resp.Header.Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}

	got, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(got) != wantCSV {
		t.Errorf("body:\n%q\nwant:\n%q", got, wantCSV)
	}
}

func TestHandleProcess_Workbook(t *testing.T) {
	ts, done := newTestServer(t)
	defer done()

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"id", "name"},
		{"1", "Alice"},
		{"2", "Bob"},
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &rows[i]); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	f.Close()

	body, contentType := multipartBody(t, "accounts.xlsx", buf.Bytes())
	resp, err := http.Post(ts.URL+"/process", contentType, body)
	if err != nil {
		t.Fatalf("POST /process: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got, _ := io.ReadAll(resp.Body)
	if string(got) != wantCSV {
		t.Errorf("body:\n%q\nwant:\n%q", got, wantCSV)
	}
}

func TestHandleProcess_SkippedRows(t *testing.T) {
	ts, done := newTestServer(t)
	defer done()

	body, contentType := multipartBody(t, "accounts.csv", []byte("id,name\n1,Alice\n9,Nobody\n"))
	resp, err := http.Post(ts.URL+"/process", contentType, body)
	if err != nil {
		t.Fatalf("POST /process: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Skipped-Rows"); got != "1" {
		t.Errorf("X-Skipped-Rows = %q, want %q", got, "1")
	}

	got, _ := io.ReadAll(resp.Body)
	want := "id,name,Status,Status Set On\n1,Alice,active,2020-01-01\n"
	if string(got) != want {
		t.Errorf("body:\n%q\nwant:\n%q", got, want)
	}
}

func TestHandleProcess_MalformedFile(t *testing.T) {
	ts, done := newTestServer(t)
	defer done()

	body, contentType := multipartBody(t, "accounts.csv", []byte("id,name\nonly-one-field\n"))
	resp, err := http.Post(ts.URL+"/process", contentType, body)
	if err != nil {
		t.Fatalf("POST /process: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}

func TestHandleProcess_AllRowsFailed(t *testing.T) {
	ts, done := newTestServer(t)
	defer done()

	body, contentType := multipartBody(t, "accounts.csv", []byte("id,name\n9,Nobody\n"))
	resp, err := http.Post(ts.URL+"/process", contentType, body)
	if err != nil {
		t.Fatalf("POST /process: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestHandleProcess_NoFile(t *testing.T) {
	ts, done := newTestServer(t)
	defer done()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("unrelated", "value")
	mw.Close()

	resp, err := http.Post(ts.URL+"/process", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST /process: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleIndex(t *testing.T) {
	ts, done := newTestServer(t)
	defer done()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Get Account Statuses") {
		t.Error("index page should contain the form title")
	}
	if !strings.Contains(string(body), `name="accounts-csv"`) {
		t.Error("index page should contain the upload field")
	}
}

func TestHandleHealth(t *testing.T) {
	ts, done := newTestServer(t)
	defer done()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
