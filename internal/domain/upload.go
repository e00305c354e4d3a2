package domain

import (
	"path"
	"strings"
)

// PDFExtension is the only file type accepted for upload.
const PDFExtension = ".pdf"

// legacyPathPrefix is stripped from user supplied directories; the target
// repository stores papers at its root rather than under pyqs/.
const legacyPathPrefix = "pyqs/"

// ExamDetails describes the paper being uploaded.
type ExamDetails struct {
	SubjectCode        string
	SpecializationCode string
	Type               string
	Back               bool
	Year               string
	Month              string
	Date               string
	Set                string
}

// Contributor identifies the person submitting the paper.
type Contributor struct {
	Name   string
	Course string
	Batch  string
}

// UploadRequest is a validated-or-not submission from the upload form.
type UploadRequest struct {
	Content      []byte
	OriginalName string // name of the uploaded file as sent by the browser
	FileName     string // name the file is committed under
	Path         string // target directory as typed by the user
	Exam         ExamDetails
	Contributor  Contributor
}

// Validate checks the file extension and target directory, in that order.
func (r *UploadRequest) Validate() error {
	if r == nil || r.OriginalName == "" || !strings.HasSuffix(r.OriginalName, PDFExtension) {
		return ErrInvalidPDF
	}
	if NormalizePath(r.Path) == "" {
		return ErrInvalidPath
	}
	return nil
}

// FilePath returns the repository path the file is committed to.
func (r *UploadRequest) FilePath() string {
	return NormalizePath(r.Path) + "/" + r.fileName()
}

func (r *UploadRequest) fileName() string {
	if name := strings.TrimSpace(r.FileName); name != "" {
		return name
	}
	return path.Base(r.OriginalName)
}

// CommitName is the file name used in commit messages and titles.
func (r *UploadRequest) CommitName() string {
	return r.fileName()
}

// NormalizePath strips surrounding whitespace and slashes and removes the
// first occurrence of the legacy "pyqs/" segment.
func NormalizePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	p = strings.Replace(p, legacyPathPrefix, "", 1)
	return strings.Trim(p, "/")
}

// UploadResult is returned for a successful upload.
type UploadResult struct {
	UploadID          string
	Branch            string
	FilePath          string
	PullRequestNumber int
	PullRequestURL    string
}
