package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/compozy/pyqs-uploader/internal/domain"
)

// PreparePRBodyUseCase renders the markdown body of an upload pull request.
type PreparePRBodyUseCase struct {
}

// sanitizeValue keeps user input from closing the inline code span it is
// rendered in.
func (uc *PreparePRBodyUseCase) sanitizeValue(value string) string {
	value = strings.ReplaceAll(value, "`", "")
	value = strings.ReplaceAll(value, "\r", "")
	return strings.ReplaceAll(value, "\n", " ")
}

// Execute runs the use case.
func (uc *PreparePRBodyUseCase) Execute(_ context.Context, req *domain.UploadRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("upload request cannot be nil")
	}
	s := uc.sanitizeValue
	data := struct {
		Original    string
		File        string
		Path        string
		Exam        domain.ExamDetails
		Contributor domain.Contributor
	}{
		Original: s(req.OriginalName),
		File:     s(req.CommitName()),
		Path:     s(req.FilePath()),
		Exam: domain.ExamDetails{
			SubjectCode:        s(req.Exam.SubjectCode),
			SpecializationCode: s(req.Exam.SpecializationCode),
			Type:               s(req.Exam.Type),
			Back:               req.Exam.Back,
			Year:               s(req.Exam.Year),
			Month:              s(req.Exam.Month),
			Date:               s(req.Exam.Date),
			Set:                s(req.Exam.Set),
		},
		Contributor: domain.Contributor{
			Name:   s(req.Contributor.Name),
			Course: s(req.Contributor.Course),
			Batch:  s(req.Contributor.Batch),
		},
	}

	tmpl, err := template.New("pr-body").Option("missingkey=error").Parse(prBodyTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse PR body template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute PR body template: %w", err)
	}
	return buf.String(), nil
}

const prBodyTemplate = "" +
	"\nThis is an autogenerated PR to add a new file to the repository.\n\n" +
	"- Original: `{{.Original}}`\n" +
	"- File: `{{.File}}`\n" +
	"- Path: `{{.Path}}`\n\n" +
	">[!NOTE]\n" +
	">This PR is created by a bot.\n\n" +
	"### Details\n\n" +
	"- exam_subject_code: `{{.Exam.SubjectCode}}`\n" +
	"- exam_specialization_code: `{{.Exam.SpecializationCode}}`\n" +
	"- exam_type: `{{.Exam.Type}}`\n" +
	"- back: `{{.Exam.Back}}`\n" +
	"- exam_year: `{{.Exam.Year}}`\n" +
	"- exam_month: `{{.Exam.Month}}`\n" +
	"- exam_date: `{{.Exam.Date}}`\n" +
	"- exam_set: `{{.Exam.Set}}`\n\n" +
	"### Contributor\n\n" +
	"- Name: `{{.Contributor.Name}}`\n" +
	"- Course: `{{.Contributor.Course}}`\n" +
	"- Batch: `{{.Contributor.Batch}}`\n"
