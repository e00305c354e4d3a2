package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/compozy/pyqs-uploader/internal/domain"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	mu       sync.Mutex
	requests []*domain.UploadRequest
	result   *domain.UploadResult
	err      error
	panicMsg string
}

func (f *fakeUploader) Execute(ctx context.Context, req *domain.UploadRequest) (*domain.UploadResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if _, ok := ctx.Deadline(); !ok {
		panic("upload context has no deadline")
	}
	return f.result, f.err
}

func (f *fakeUploader) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type uploadFile struct {
	name    string
	content []byte
}

func validFields() map[string]string {
	return map[string]string{
		"filename":                 "x.pdf",
		"path":                     "/pyqs/2023/",
		"exam_subject_code":        "CS101",
		"exam_specialization_code": "CSE",
		"exam_type":                "endsem",
		"exam_year":                "2023",
		"exam_month":               "12",
		"exam_date":                "04",
		"exam_set":                 "A",
		"contributor_name":         "Asha",
		"contributor_course":       "BTech",
		"contributor_batch":        "2022",
	}
}

func newUploadRequest(t *testing.T, fields map[string]string, file *uploadFile) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", file.name)
		require.NoError(t, err)
		_, err = fw.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pdfFile() *uploadFile {
	return &uploadFile{name: "scan.pdf", content: []byte("%PDF-1.4 test paper")}
}
