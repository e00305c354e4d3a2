package handler

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/compozy/pyqs-uploader/internal/domain"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Messages returned for the two form checks that happen before any upload.
const (
	MsgInvalidPDF  = "Please upload a valid PDF file."
	MsgInvalidPath = "Please provide a valid path."
	errorPrefix    = "Error: "
)

// RequestIDHeader carries the request id set by the routing middleware.
const RequestIDHeader = "X-Request-ID"

// requiredFields must be present in every upload form.
var requiredFields = []string{
	"exam_subject_code",
	"exam_specialization_code",
	"exam_type",
	"exam_year",
	"exam_month",
	"exam_date",
	"exam_set",
	"contributor_name",
	"contributor_course",
	"contributor_batch",
}

// Uploader runs the upload workflow.
type Uploader interface {
	Execute(ctx context.Context, req *domain.UploadRequest) (*domain.UploadResult, error)
}

// Config bounds a single upload.
type Config struct {
	UploadTimeout  time.Duration
	MaxUploadBytes int64
}

// Server serves the upload form and hands submissions to an Uploader.
type Server struct {
	uploader Uploader
	cfg      Config
	logger   *zap.Logger
	pages    *template.Template
}

// New returns a ready Server instance.
func New(uploader Uploader, cfg Config, logger *zap.Logger) (*Server, error) {
	if uploader == nil {
		return nil, fmt.Errorf("uploader cannot be nil")
	}
	if cfg.UploadTimeout <= 0 || cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("upload timeout and size limit must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pages, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	return &Server{uploader: uploader, cfg: cfg, logger: logger, pages: pages}, nil
}

// Upload serves the form on GET and accepts submissions on POST.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.render(w, "index.html", nil)
	case http.MethodPost:
		s.submit(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// Healthz reports liveness.
func (s *Server) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With(zap.String("request_id", r.Header.Get(RequestIDHeader)))
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			writeText(w, MsgInvalidPDF)
			return
		}
		writeText(w, errorPrefix+"failed to read upload form: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req, err := parseUploadForm(r.MultipartForm)
	if err != nil {
		logger.Info("upload rejected", zap.String("kind", string(domain.ErrorKind(err))), zap.Error(err))
		writeText(w, validationMessage(err))
		return
	}

	// The workflow is not interrupted by a client disconnect: stopping
	// between branch creation and the pull request would orphan the branch.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.cfg.UploadTimeout)
	defer cancel()
	result, err := s.uploader.Execute(ctx, req)
	if err != nil {
		logger.Error("upload failed", zap.String("kind", string(domain.ErrorKind(err))), zap.Error(err))
		writeText(w, errorPrefix+err.Error())
		return
	}
	logger.Info("upload succeeded",
		zap.String("upload_id", result.UploadID),
		zap.String("pull_request", result.PullRequestURL),
	)
	s.render(w, "success.html", result)
}

// parseUploadForm checks the file, then the path, then the metadata fields.
func parseUploadForm(form *multipart.Form) (*domain.UploadRequest, error) {
	headers := form.File["file"]
	if len(headers) == 0 || headers[0] == nil {
		return nil, domain.ErrInvalidPDF
	}
	header := headers[0]
	req := &domain.UploadRequest{
		OriginalName: header.Filename,
		FileName:     formValue(form, "filename"),
		Path:         formValue(form, "path"),
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	for _, name := range requiredFields {
		if _, ok := form.Value[name]; !ok {
			return nil, domain.MissingFieldError(name)
		}
	}
	content, err := readFile(header)
	if err != nil {
		return nil, err
	}
	req.Content = content
	req.Exam = domain.ExamDetails{
		SubjectCode:        formValue(form, "exam_subject_code"),
		SpecializationCode: formValue(form, "exam_specialization_code"),
		Type:               formValue(form, "exam_type"),
		Back:               hasValue(form, "back"),
		Year:               formValue(form, "exam_year"),
		Month:              formValue(form, "exam_month"),
		Date:               formValue(form, "exam_date"),
		Set:                formValue(form, "exam_set"),
	}
	req.Contributor = domain.Contributor{
		Name:   formValue(form, "contributor_name"),
		Course: formValue(form, "contributor_course"),
		Batch:  formValue(form, "contributor_batch"),
	}
	return req, nil
}

func readFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return content, nil
}

func formValue(form *multipart.Form, name string) string {
	if values := form.Value[name]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func hasValue(form *multipart.Form, name string) bool {
	_, ok := form.Value[name]
	return ok
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidPDF):
		return MsgInvalidPDF
	case errors.Is(err, domain.ErrInvalidPath):
		return MsgInvalidPath
	default:
		return errorPrefix + err.Error()
	}
}

func (s *Server) render(w http.ResponseWriter, page string, data any) {
	var buf strings.Builder
	if err := s.pages.ExecuteTemplate(&buf, page, data); err != nil {
		s.logger.Error("failed to render page", zap.String("page", page), zap.Error(err))
		writeText(w, errorPrefix+"failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, buf.String())
}

// writeText answers with 200 and a plain text body.
func writeText(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, msg)
}
