package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"taskdeck/internal/model"
	"taskdeck/internal/recurrence"
)

var tracer = otel.Tracer("taskdeck/internal/repository")

// TaskRepository provides owner-scoped task storage on top of gorm. Every
// query filters by owner id, so a caller can never observe another user's
// rows — a foreign id behaves exactly like a missing one.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// UpdateResult carries the outcome of an update: the mutated task, and the
// successor occurrence when completing a recurring task spawned one.
type UpdateResult struct {
	Task      *model.Task
	Successor *model.Task
}

// Create inserts a new task for the owner. The request is assumed validated.
func (r *TaskRepository) Create(ctx context.Context, ownerID string, req *model.CreateTaskRequest) (*model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.Create",
		trace.WithAttributes(attribute.String("task.owner", ownerID)),
	)
	defer span.End()

	task := &model.Task{
		ID:                uuid.New().String(),
		OwnerID:           ownerID,
		Text:              req.Text,
		Completed:         false,
		DueDate:           req.DueDate,
		IsRecurring:       req.IsRecurring,
		RecurrencePattern: req.RecurrencePattern,
	}

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	span.SetAttributes(attribute.String("task.id", task.ID))
	return task, nil
}

// List returns the owner's tasks, newest first.
func (r *TaskRepository) List(ctx context.Context, ownerID string) ([]model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.List",
		trace.WithAttributes(attribute.String("task.owner", ownerID)),
	)
	defer span.End()

	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return tasks, nil
}

// GetByID retrieves one of the owner's tasks by id.
func (r *TaskRepository) GetByID(ctx context.Context, ownerID, id string) (*model.Task, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.GetByID",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	var task model.Task
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		span.SetAttributes(attribute.Bool("task.found", false))
		return nil, model.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	span.SetAttributes(attribute.Bool("task.found", true))
	return &task, nil
}

// Update applies a partial update to one of the owner's tasks. When the
// update flips a recurring task from not-completed to completed, the next
// occurrence is inserted in the same transaction, so the completed task and
// its successor appear together or not at all. An update that would leave a
// recurring task without a valid pattern is rejected before any write.
func (r *TaskRepository) Update(ctx context.Context, ownerID, id string, req *model.UpdateTaskRequest) (*UpdateResult, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.Update",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	var result UpdateResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		err := tx.Where("owner_id = ? AND id = ?", ownerID, id).First(&task).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("find task: %w", err)
		}

		wasCompleted := task.Completed

		if req.Text != nil {
			task.Text = *req.Text
		}
		if req.Completed != nil {
			task.Completed = *req.Completed
		}
		if req.DueDate != nil {
			task.DueDate = req.DueDate
		} else if req.ClearDueDate {
			task.DueDate = nil
		}
		if req.IsRecurring != nil {
			task.IsRecurring = *req.IsRecurring
		}
		if req.RecurrencePattern != nil {
			task.RecurrencePattern = req.RecurrencePattern
		}

		// A recurring task must carry a valid pattern; a non-recurring one
		// must not carry any. Enforced here because it depends on the
		// combination of stored state and request fields.
		if task.IsRecurring {
			if task.RecurrencePattern == nil {
				return model.ErrPatternRequired
			}
			if _, err := recurrence.ParsePattern(*task.RecurrencePattern); err != nil {
				return model.ErrInvalidPattern
			}
		} else {
			task.RecurrencePattern = nil
		}

		if err := tx.Save(&task).Error; err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		result.Task = &task

		if !wasCompleted && task.Completed && task.IsRecurring {
			successor, err := nextOccurrence(&task)
			if err != nil {
				return err
			}
			if err := tx.Create(successor).Error; err != nil {
				return fmt.Errorf("create successor: %w", err)
			}
			result.Successor = successor
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Successor != nil {
		span.SetAttributes(attribute.String("task.successor_id", result.Successor.ID))
	}
	return &result, nil
}

// nextOccurrence materializes the follow-up occurrence of a just-completed
// recurring task. The basis for the new due date is the old one, or today
// when the task had none; the successor points back at its predecessor.
func nextOccurrence(task *model.Task) (*model.Task, error) {
	pattern, err := recurrence.ParsePattern(*task.RecurrencePattern)
	if err != nil {
		return nil, model.ErrInvalidPattern
	}

	basis := time.Now()
	if task.DueDate != nil {
		basis = task.DueDate.Time
	}
	next, err := recurrence.NextOccurrence(basis, pattern)
	if err != nil {
		return nil, model.ErrInvalidPattern
	}

	due := model.NewDate(next)
	parentID := task.ID
	return &model.Task{
		ID:                uuid.New().String(),
		OwnerID:           task.OwnerID,
		Text:              task.Text,
		Completed:         false,
		DueDate:           &due,
		IsRecurring:       true,
		RecurrencePattern: task.RecurrencePattern,
		ParentTaskID:      &parentID,
	}, nil
}

// Delete removes exactly one of the owner's tasks. Parents and children of
// the task are untouched.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, id string) error {
	ctx, span := tracer.Start(ctx, "TaskRepository.Delete",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	res := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		span.SetAttributes(attribute.Bool("task.found", false))
		return model.ErrTaskNotFound
	}

	span.SetAttributes(attribute.Bool("task.found", true))
	return nil
}

// DeleteSeries removes the whole series the task belongs to: the true root
// (found by walking the parent chain) plus every transitive descendant.
// All rows go in one transaction, all owner-scoped. Returns how many rows
// were removed.
func (r *TaskRepository) DeleteSeries(ctx context.Context, ownerID, id string) (int64, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.DeleteSeries",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		err := tx.Where("owner_id = ? AND id = ?", ownerID, id).First(&task).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("find task: %w", err)
		}

		rootID, err := resolveRoot(tx, ownerID, &task)
		if err != nil {
			return err
		}

		ids, err := collectSeries(tx, ownerID, rootID)
		if err != nil {
			return err
		}

		res := tx.Where("owner_id = ? AND id IN ?", ownerID, ids).Delete(&model.Task{})
		if res.Error != nil {
			return fmt.Errorf("delete series: %w", res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int64("task.deleted", deleted))
	return deleted, nil
}

// resolveRoot walks parent pointers up to the oldest ancestor. A dangling
// parent id (occurrence deleted individually) ends the walk at the current
// node; a visited set stops corrupt cycles.
func resolveRoot(tx *gorm.DB, ownerID string, task *model.Task) (string, error) {
	visited := map[string]bool{task.ID: true}
	current := task
	for current.ParentTaskID != nil && !visited[*current.ParentTaskID] {
		visited[*current.ParentTaskID] = true
		var parent model.Task
		err := tx.Where("owner_id = ? AND id = ?", ownerID, *current.ParentTaskID).First(&parent).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("find parent: %w", err)
		}
		current = &parent
	}
	return current.ID, nil
}

// collectSeries gathers the root id and every descendant id breadth-first.
func collectSeries(tx *gorm.DB, ownerID, rootID string) ([]string, error) {
	ids := []string{rootID}
	seen := map[string]bool{rootID: true}
	frontier := []string{rootID}
	for len(frontier) > 0 {
		var children []model.Task
		if err := tx.Select("id").
			Where("owner_id = ? AND parent_task_id IN ?", ownerID, frontier).
			Find(&children).Error; err != nil {
			return nil, fmt.Errorf("find children: %w", err)
		}
		frontier = frontier[:0]
		for _, child := range children {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			ids = append(ids, child.ID)
			frontier = append(frontier, child.ID)
		}
	}
	return ids, nil
}

// DeleteCompleted removes all of the owner's completed tasks. Matching
// nothing is a harmless no-op.
func (r *TaskRepository) DeleteCompleted(ctx context.Context, ownerID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.DeleteCompleted",
		trace.WithAttributes(attribute.String("task.owner", ownerID)),
	)
	defer span.End()

	res := r.db.WithContext(ctx).
		Where("owner_id = ? AND completed = ?", ownerID, true).
		Delete(&model.Task{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete completed tasks: %w", res.Error)
	}

	span.SetAttributes(attribute.Int64("task.deleted", res.RowsAffected))
	return res.RowsAffected, nil
}

// Count returns the current number of tasks across all users. Used by the
// tasks gauge; errors degrade to zero rather than failing a metrics read.
func (r *TaskRepository) Count() int64 {
	var count int64
	if err := r.db.Model(&model.Task{}).Count(&count).Error; err != nil {
		return 0
	}
	return count
}
