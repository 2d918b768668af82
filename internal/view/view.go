// Package view derives the task list a client renders: filtered, sorted and
// annotated with a due status. Everything here is pure — the same inputs
// always produce the same ordered output, and nothing is persisted.
package view

import (
	"sort"
	"time"

	"taskdeck/internal/model"
	"taskdeck/internal/recurrence"
)

// Filter selects tasks by completion state.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter maps a raw query value to a Filter, defaulting to all.
func ParseFilter(raw string) Filter {
	switch Filter(raw) {
	case FilterActive, FilterCompleted:
		return Filter(raw)
	default:
		return FilterAll
	}
}

// Sort selects the ordering of the derived list.
type Sort string

const (
	// SortCreated keeps the store's default ordering, newest first.
	SortCreated Sort = "created"
	// SortDue orders by due date ascending, tasks without one last.
	SortDue Sort = "due"
)

// ParseSort maps a raw query value to a Sort, defaulting to created.
func ParseSort(raw string) Sort {
	if Sort(raw) == SortDue {
		return SortDue
	}
	return SortCreated
}

// DueStatus classifies how urgent a task's due date is right now.
type DueStatus string

const (
	DueNone    DueStatus = "none"
	DueOverdue DueStatus = "overdue"
	DueSoon    DueStatus = "due-soon"
	DueOK      DueStatus = "ok"
)

// dueSoonDays is the inclusive window, in calendar days from today, within
// which an upcoming due date is flagged.
const dueSoonDays = 3

// AnnotatedTask is a task plus its derived due status.
type AnnotatedTask struct {
	model.Task
	DueStatus DueStatus `json:"due_status"`
}

// Derive filters, sorts and annotates tasks for display. The input order is
// assumed to be the store's default (newest first); filtering and the due
// sort both preserve relative order of equals.
func Derive(tasks []model.Task, filter Filter, sortBy Sort, now time.Time) []AnnotatedTask {
	out := make([]AnnotatedTask, 0, len(tasks))
	for _, t := range tasks {
		switch filter {
		case FilterActive:
			if t.Completed {
				continue
			}
		case FilterCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, AnnotatedTask{Task: t, DueStatus: StatusOf(t, now)})
	}

	if sortBy == SortDue {
		sort.SliceStable(out, func(i, j int) bool {
			di, dj := out[i].DueDate, out[j].DueDate
			switch {
			case di == nil:
				return false
			case dj == nil:
				return true
			default:
				return di.Time.Before(dj.Time)
			}
		})
	}

	return out
}

// StatusOf derives the due status of a single task at the given moment.
// Completed tasks and tasks without a due date have no status; otherwise the
// date is compared against the current calendar day.
func StatusOf(t model.Task, now time.Time) DueStatus {
	if t.Completed || t.DueDate == nil {
		return DueNone
	}
	today := recurrence.DateOf(now)
	due := recurrence.DateOf(t.DueDate.Time)
	switch {
	case due.Before(today):
		return DueOverdue
	case !due.After(today.AddDate(0, 0, dueSoonDays)):
		return DueSoon
	default:
		return DueOK
	}
}
