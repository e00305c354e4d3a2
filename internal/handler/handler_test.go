package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/compozy/pyqs-uploader/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() Config {
	return Config{UploadTimeout: time.Minute, MaxUploadBytes: 1 << 20}
}

func newTestServer(t *testing.T, up Uploader) *Server {
	srv, err := New(up, testConfig(), zap.NewNop())
	require.NoError(t, err)
	return srv
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Upload(rec, req)
	return rec
}

func TestServer_Form(t *testing.T) {
	t.Run("Should render the upload form", func(t *testing.T) {
		srv := newTestServer(t, &fakeUploader{})
		rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		body := rec.Body.String()
		assert.Contains(t, body, `enctype="multipart/form-data"`)
		for _, name := range append([]string{"file", "filename", "path", "back"}, requiredFields...) {
			assert.Contains(t, body, `name="`+name+`"`)
		}
	})
	t.Run("Should reject other methods", func(t *testing.T) {
		srv := newTestServer(t, &fakeUploader{})
		rec := serve(srv, httptest.NewRequest(http.MethodDelete, "/", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "GET, HEAD, POST", rec.Header().Get("Allow"))
	})
}

func TestServer_Submit(t *testing.T) {
	t.Run("Should render the pull request url on success", func(t *testing.T) {
		up := &fakeUploader{result: &domain.UploadResult{
			UploadID:       "id-1",
			PullRequestURL: "https://github.com/acme/pyqs/pull/7",
		}}
		srv := newTestServer(t, up)
		rec := serve(srv, newUploadRequest(t, validFields(), pdfFile()))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `href="https://github.com/acme/pyqs/pull/7"`)
		require.Equal(t, 1, up.calls())
		got := up.requests[0]
		assert.Equal(t, "scan.pdf", got.OriginalName)
		assert.Equal(t, "x.pdf", got.FileName)
		assert.Equal(t, "2023/x.pdf", got.FilePath())
		assert.Equal(t, []byte("%PDF-1.4 test paper"), got.Content)
		assert.Equal(t, "CS101", got.Exam.SubjectCode)
		assert.Equal(t, "A", got.Exam.Set)
		assert.False(t, got.Exam.Back)
		assert.Equal(t, domain.Contributor{Name: "Asha", Course: "BTech", Batch: "2022"}, got.Contributor)
	})
	t.Run("Should set back when the checkbox is present", func(t *testing.T) {
		up := &fakeUploader{result: &domain.UploadResult{PullRequestURL: "https://example.test/pr/1"}}
		fields := validFields()
		fields["back"] = "on"
		serve(newTestServer(t, up), newUploadRequest(t, fields, pdfFile()))
		require.Equal(t, 1, up.calls())
		assert.True(t, up.requests[0].Exam.Back)
	})
	t.Run("Should fall back to the uploaded name for a blank filename", func(t *testing.T) {
		up := &fakeUploader{result: &domain.UploadResult{PullRequestURL: "https://example.test/pr/1"}}
		fields := validFields()
		fields["filename"] = ""
		serve(newTestServer(t, up), newUploadRequest(t, fields, pdfFile()))
		require.Equal(t, 1, up.calls())
		assert.Equal(t, "2023/scan.pdf", up.requests[0].FilePath())
	})
	for _, name := range []string{"notes.docx", "paper.PDF.txt", "pdf", ""} {
		t.Run("Should reject "+name+" without uploading", func(t *testing.T) {
			up := &fakeUploader{}
			rec := serve(newTestServer(t, up), newUploadRequest(t, validFields(), &uploadFile{name: name, content: []byte("x")}))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, MsgInvalidPDF, rec.Body.String())
			assert.Zero(t, up.calls())
		})
	}
	t.Run("Should reject a form without a file", func(t *testing.T) {
		up := &fakeUploader{}
		rec := serve(newTestServer(t, up), newUploadRequest(t, validFields(), nil))
		assert.Equal(t, MsgInvalidPDF, rec.Body.String())
		assert.Zero(t, up.calls())
	})
	t.Run("Should reject a non-multipart post", func(t *testing.T) {
		up := &fakeUploader{}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("path=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := serve(newTestServer(t, up), req)
		assert.Equal(t, MsgInvalidPDF, rec.Body.String())
		assert.Zero(t, up.calls())
	})
	for _, path := range []string{"", "   ", "/", "//", " / "} {
		t.Run("Should reject path "+strings.TrimSpace(path)+" without uploading", func(t *testing.T) {
			up := &fakeUploader{}
			fields := validFields()
			fields["path"] = path
			rec := serve(newTestServer(t, up), newUploadRequest(t, fields, pdfFile()))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, MsgInvalidPath, rec.Body.String())
			assert.Zero(t, up.calls())
		})
	}
	t.Run("Should check the file before the path", func(t *testing.T) {
		up := &fakeUploader{}
		fields := validFields()
		fields["path"] = ""
		rec := serve(newTestServer(t, up), newUploadRequest(t, fields, &uploadFile{name: "a.txt"}))
		assert.Equal(t, MsgInvalidPDF, rec.Body.String())
	})
	t.Run("Should name a missing metadata field", func(t *testing.T) {
		up := &fakeUploader{}
		fields := validFields()
		delete(fields, "exam_set")
		rec := serve(newTestServer(t, up), newUploadRequest(t, fields, pdfFile()))
		assert.Equal(t, `Error: validation failed: missing form field "exam_set"`, rec.Body.String())
		assert.Zero(t, up.calls())
	})
	t.Run("Should accept empty metadata values", func(t *testing.T) {
		up := &fakeUploader{result: &domain.UploadResult{PullRequestURL: "https://example.test/pr/1"}}
		fields := validFields()
		fields["exam_set"] = ""
		serve(newTestServer(t, up), newUploadRequest(t, fields, pdfFile()))
		assert.Equal(t, 1, up.calls())
	})
	t.Run("Should answer workflow failures with plain text and status 200", func(t *testing.T) {
		up := &fakeUploader{err: errors.Join(domain.ErrCommit, errors.New("409 conflict"))}
		rec := serve(newTestServer(t, up), newUploadRequest(t, validFields(), pdfFile()))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
		assert.True(t, strings.HasPrefix(rec.Body.String(), "Error: "))
		assert.Contains(t, rec.Body.String(), "409 conflict")
	})
	t.Run("Should reject bodies over the size limit", func(t *testing.T) {
		up := &fakeUploader{}
		srv, err := New(up, Config{UploadTimeout: time.Minute, MaxUploadBytes: 512}, zap.NewNop())
		require.NoError(t, err)
		big := &uploadFile{name: "big.pdf", content: []byte(strings.Repeat("x", 4096))}
		rec := serve(srv, newUploadRequest(t, validFields(), big))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "Error: "), rec.Body.String())
		assert.Zero(t, up.calls())
	})
}

func TestNew(t *testing.T) {
	t.Run("Should require an uploader", func(t *testing.T) {
		_, err := New(nil, testConfig(), nil)
		assert.Error(t, err)
	})
	t.Run("Should require positive limits", func(t *testing.T) {
		_, err := New(&fakeUploader{}, Config{}, nil)
		assert.Error(t, err)
	})
}

func TestServer_Healthz(t *testing.T) {
	srv := newTestServer(t, &fakeUploader{})
	rec := httptest.NewRecorder()
	srv.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
