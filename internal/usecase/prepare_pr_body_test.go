package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/compozy/pyqs-uploader/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() *domain.UploadRequest {
	return &domain.UploadRequest{
		Content:      []byte("%PDF-1.4"),
		OriginalName: "scan_0042.pdf",
		FileName:     "cs101-endsem.pdf",
		Path:         "/pyqs/2023/cs/",
		Exam: domain.ExamDetails{
			SubjectCode:        "CS101",
			SpecializationCode: "CSE",
			Type:               "endsem",
			Back:               true,
			Year:               "2023",
			Month:              "12",
			Date:               "04",
			Set:                "A",
		},
		Contributor: domain.Contributor{Name: "Asha", Course: "BTech", Batch: "2022"},
	}
}

func TestPreparePRBodyUseCase_Execute(t *testing.T) {
	t.Run("Should render file, details and contributor sections", func(t *testing.T) {
		uc := &PreparePRBodyUseCase{}
		body, err := uc.Execute(context.Background(), sampleRequest())
		require.NoError(t, err)
		assert.Contains(t, body, "This is an autogenerated PR to add a new file to the repository.")
		assert.Contains(t, body, "- Original: `scan_0042.pdf`")
		assert.Contains(t, body, "- File: `cs101-endsem.pdf`")
		assert.Contains(t, body, "- Path: `2023/cs/cs101-endsem.pdf`")
		assert.Contains(t, body, ">[!NOTE]\n>This PR is created by a bot.")
		assert.Contains(t, body, "### Details")
		assert.Contains(t, body, "- exam_subject_code: `CS101`")
		assert.Contains(t, body, "- exam_specialization_code: `CSE`")
		assert.Contains(t, body, "- exam_type: `endsem`")
		assert.Contains(t, body, "- back: `true`")
		assert.Contains(t, body, "- exam_year: `2023`")
		assert.Contains(t, body, "- exam_month: `12`")
		assert.Contains(t, body, "- exam_date: `04`")
		assert.Contains(t, body, "- exam_set: `A`")
		assert.Contains(t, body, "### Contributor")
		assert.Contains(t, body, "- Name: `Asha`")
		assert.Contains(t, body, "- Course: `BTech`")
		assert.Contains(t, body, "- Batch: `2022`")
	})
	t.Run("Should render back as false when unchecked", func(t *testing.T) {
		req := sampleRequest()
		req.Exam.Back = false
		body, err := (&PreparePRBodyUseCase{}).Execute(context.Background(), req)
		require.NoError(t, err)
		assert.Contains(t, body, "- back: `false`")
	})
	t.Run("Should strip backticks and newlines from user values", func(t *testing.T) {
		req := sampleRequest()
		req.Contributor.Name = "Eve`\n### Injected"
		body, err := (&PreparePRBodyUseCase{}).Execute(context.Background(), req)
		require.NoError(t, err)
		assert.Contains(t, body, "- Name: `Eve ### Injected`")
		assert.Equal(t, 2, strings.Count(body, "\n### "))
	})
	t.Run("Should not evaluate template syntax in user values", func(t *testing.T) {
		req := sampleRequest()
		req.Exam.Set = "{{.Path}}"
		body, err := (&PreparePRBodyUseCase{}).Execute(context.Background(), req)
		require.NoError(t, err)
		assert.Contains(t, body, "- exam_set: `{{.Path}}`")
	})
	t.Run("Should fall back to the original name for the file line", func(t *testing.T) {
		req := sampleRequest()
		req.FileName = "  "
		body, err := (&PreparePRBodyUseCase{}).Execute(context.Background(), req)
		require.NoError(t, err)
		assert.Contains(t, body, "- File: `scan_0042.pdf`")
		assert.Contains(t, body, "- Path: `2023/cs/scan_0042.pdf`")
	})
	t.Run("Should reject a nil request", func(t *testing.T) {
		_, err := (&PreparePRBodyUseCase{}).Execute(context.Background(), nil)
		assert.Error(t, err)
	})
}
