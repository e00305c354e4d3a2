package domain

import (
	"time"
)

// UploadStatus represents the overall status of an upload workflow
type UploadStatus string

const (
	UploadStatusPending   UploadStatus = "pending"
	UploadStatusRunning   UploadStatus = "running"
	UploadStatusCompleted UploadStatus = "completed"
	UploadStatusFailed    UploadStatus = "failed"
)

// StepStatus represents the status of an individual step
type StepStatus string

const (
	StepStatusPending     StepStatus = "pending"
	StepStatusRunning     StepStatus = "running"
	StepStatusCompleted   StepStatus = "completed"
	StepStatusFailed      StepStatus = "failed"
	StepStatusCompensated StepStatus = "compensated"
)

// StepType identifies a step of the upload workflow
type StepType string

const (
	StepTypeMintToken       StepType = "mint_token"
	StepTypeResolveBase     StepType = "resolve_base"
	StepTypeCreateBranch    StepType = "create_branch"
	StepTypeCommitFile      StepType = "commit_file"
	StepTypeOpenPullRequest StepType = "open_pull_request"
)

// UploadState tracks the progress of one upload. It lives only for the
// duration of the request.
type UploadState struct {
	UploadID  string
	StartedAt time.Time
	UpdatedAt time.Time
	Branch    string
	Steps     []StepRecord
	Status    UploadStatus
	Error     string
}

// StepRecord represents a single step in the workflow
type StepRecord struct {
	Type        StepType
	Status      StepStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Data        map[string]any
	Error       string
}

// NewUploadState creates a new upload state
func NewUploadState(uploadID string) *UploadState {
	now := time.Now()
	return &UploadState{
		UploadID:  uploadID,
		StartedAt: now,
		UpdatedAt: now,
		Steps:     []StepRecord{},
		Status:    UploadStatusPending,
	}
}

// AddStep appends a pending step record
func (s *UploadState) AddStep(stepType StepType) *StepRecord {
	s.Steps = append(s.Steps, StepRecord{
		Type:   stepType,
		Status: StepStatusPending,
	})
	s.UpdatedAt = time.Now()
	return &s.Steps[len(s.Steps)-1]
}

// Step returns the record for stepType, or nil.
func (s *UploadState) Step(stepType StepType) *StepRecord {
	for i := range s.Steps {
		if s.Steps[i].Type == stepType {
			return &s.Steps[i]
		}
	}
	return nil
}

// CompletedSteps returns completed steps, most recent first
func (s *UploadState) CompletedSteps() []StepRecord {
	var completed []StepRecord
	for i := len(s.Steps) - 1; i >= 0; i-- {
		if s.Steps[i].Status == StepStatusCompleted {
			completed = append(completed, s.Steps[i])
		}
	}
	return completed
}

// MarkStarted marks a pending step as running
func (s *UploadState) MarkStarted(stepType StepType) {
	if step := s.Step(stepType); step != nil && step.Status == StepStatusPending {
		now := time.Now()
		step.Status = StepStatusRunning
		step.StartedAt = now
		s.UpdatedAt = now
	}
}

// MarkCompleted marks a running step as completed and keeps its data
func (s *UploadState) MarkCompleted(stepType StepType, data map[string]any) {
	if step := s.Step(stepType); step != nil && step.Status == StepStatusRunning {
		now := time.Now()
		step.Status = StepStatusCompleted
		step.CompletedAt = &now
		step.Data = data
		s.UpdatedAt = now
	}
}

// MarkFailed marks a running step and the upload as failed
func (s *UploadState) MarkFailed(stepType StepType, err error) {
	now := time.Now()
	if step := s.Step(stepType); step != nil && step.Status == StepStatusRunning {
		step.Status = StepStatusFailed
		step.CompletedAt = &now
		step.Error = err.Error()
	}
	s.UpdatedAt = now
	s.Status = UploadStatusFailed
	s.Error = err.Error()
}

// MarkCompensated records that a completed step was undone
func (s *UploadState) MarkCompensated(stepType StepType) {
	if step := s.Step(stepType); step != nil && step.Status == StepStatusCompleted {
		step.Status = StepStatusCompensated
		s.UpdatedAt = time.Now()
	}
}

// ExecutedSteps lists the steps that started, in order.
func (s *UploadState) ExecutedSteps() []StepType {
	var out []StepType
	for _, step := range s.Steps {
		if step.Status != StepStatusPending {
			out = append(out, step.Type)
		}
	}
	return out
}
