package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/compozy/pyqs-uploader/internal/domain"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Step represents a single step in the upload workflow
type Step struct {
	Name string
	Type domain.StepType
	// Retryable marks steps that do not mutate the repository and can be
	// repeated safely.
	Retryable  bool
	Execute    func(ctx context.Context) (data map[string]any, err error)
	Compensate func(ctx context.Context, data map[string]any) error
}

// StepExecutorConfig configures retries and compensation.
type StepExecutorConfig struct {
	RetryCount         uint64
	RetryDelay         time.Duration
	EnableCompensation bool
}

// StepExecutor runs steps strictly in order and stops at the first failure.
type StepExecutor struct {
	cfg    StepExecutorConfig
	state  *domain.UploadState
	steps  []Step
	logger *zap.Logger
}

// NewStepExecutor creates a new step executor for one upload
func NewStepExecutor(uploadID string, cfg StepExecutorConfig, logger *zap.Logger) *StepExecutor {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StepExecutor{
		cfg:    cfg,
		state:  domain.NewUploadState(uploadID),
		steps:  []Step{},
		logger: logger,
	}
}

// AddStep adds a step to the workflow
func (s *StepExecutor) AddStep(step Step) {
	s.steps = append(s.steps, step)
	s.state.AddStep(step.Type)
}

// Execute runs the workflow. No step after a failing one is started.
func (s *StepExecutor) Execute(ctx context.Context) error {
	s.state.Status = domain.UploadStatusRunning
	for _, step := range s.steps {
		if err := s.executeStep(ctx, step); err != nil {
			s.state.MarkFailed(step.Type, err)
			s.logger.Warn("upload step failed",
				zap.String("step", step.Name),
				zap.String("kind", string(domain.ErrorKind(err))),
				zap.Error(err),
			)
			if s.cfg.EnableCompensation {
				// The request context may already be done; cleanup gets its own deadline.
				compCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CompensationTimeout)
				compErr := s.compensate(compCtx)
				cancel()
				if compErr != nil {
					return fmt.Errorf("step '%s' failed: %w, cleanup also failed: %v", step.Name, err, compErr)
				}
			}
			return fmt.Errorf("step '%s' failed: %w", step.Name, err)
		}
	}
	s.state.Status = domain.UploadStatusCompleted
	return nil
}

// executeStep executes a single step, retrying it when allowed
func (s *StepExecutor) executeStep(ctx context.Context, step Step) error {
	s.state.MarkStarted(step.Type)
	s.logger.Debug("upload step started", zap.String("step", step.Name))
	var (
		data map[string]any
		err  error
	)
	if step.Retryable && s.cfg.RetryCount > 0 {
		strategy := retry.WithMaxRetries(s.cfg.RetryCount, retry.NewExponential(s.cfg.RetryDelay))
		data, err = retry.DoValue(ctx, strategy, func(retryCtx context.Context) (map[string]any, error) {
			d, execErr := step.Execute(retryCtx)
			if execErr != nil {
				s.logger.Debug("retrying upload step", zap.String("step", step.Name), zap.Error(execErr))
				return nil, retry.RetryableError(execErr)
			}
			return d, nil
		})
	} else {
		if err = ctx.Err(); err == nil {
			data, err = step.Execute(ctx)
		}
	}
	if err != nil {
		return err
	}
	s.state.MarkCompleted(step.Type, data)
	return nil
}

// compensate undoes completed steps, most recent first
func (s *StepExecutor) compensate(ctx context.Context) error {
	for _, record := range s.state.CompletedSteps() {
		step := s.findStepByType(record.Type)
		if step == nil || step.Compensate == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cleanup canceled: %w", err)
		}
		s.logger.Info("compensating upload step", zap.String("step", step.Name))
		if err := step.Compensate(ctx, record.Data); err != nil {
			return fmt.Errorf("cleanup failed for %s: %w", step.Name, err)
		}
		s.state.MarkCompensated(record.Type)
	}
	return nil
}

// findStepByType finds a step by its type
func (s *StepExecutor) findStepByType(stepType domain.StepType) *Step {
	for i := range s.steps {
		if s.steps[i].Type == stepType {
			return &s.steps[i]
		}
	}
	return nil
}

// State returns the current workflow state
func (s *StepExecutor) State() *domain.UploadState {
	return s.state
}

// SetBranch records the upload branch in the state
func (s *StepExecutor) SetBranch(branch string) {
	s.state.Branch = branch
}
