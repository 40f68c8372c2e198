package repository

import (
	"context"
	"errors"

	"tickrflow/internal/entity"

	"gorm.io/gorm"
)

// WorkflowRunRepository persists the run history of notifier flows.
type WorkflowRunRepository interface {
	Create(ctx context.Context, run *entity.WorkflowRun) error
	Update(ctx context.Context, run *entity.WorkflowRun) error
	FindByRunID(ctx context.Context, runID string) (*entity.WorkflowRun, error)
	FindRecent(ctx context.Context, limit int) ([]entity.WorkflowRun, error)
}

// NewWorkflowRunRepository creates a new GORM-based run repository.
func NewWorkflowRunRepository(db *gorm.DB) WorkflowRunRepository {
	return &workflowRunRepository{db: db}
}

type workflowRunRepository struct {
	db *gorm.DB
}

func (r *workflowRunRepository) Create(ctx context.Context, run *entity.WorkflowRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *workflowRunRepository) Update(ctx context.Context, run *entity.WorkflowRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

func (r *workflowRunRepository) FindByRunID(ctx context.Context, runID string) (*entity.WorkflowRun, error) {
	var run entity.WorkflowRun
	err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *workflowRunRepository) FindRecent(ctx context.Context, limit int) ([]entity.WorkflowRun, error) {
	var runs []entity.WorkflowRun
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}
