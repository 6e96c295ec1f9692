package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teamtaskhq/team-task-api/internal/constants"
	"github.com/teamtaskhq/team-task-api/internal/models"
	"github.com/teamtaskhq/team-task-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskFieldsRequired = errors.New("title, description, and due date are required")
	ErrTitleTooLong       = errors.New("title is too long")
	ErrDescriptionTooLong = errors.New("description is too long")
	ErrInvalidPriority    = errors.New("invalid priority")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrNotInAnyTeam       = errors.New("you are not part of any team")
)

// TaskService handles task business logic and access decisions
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    models.TaskPriority
	IsPrivate   bool
}

// UpdateTaskInput represents input for updating a task. Nil fields are left
// unchanged. The creator and team snapshot are never updatable.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *models.TaskPriority
	Status      *models.TaskStatus
	IsPrivate   *bool
}

// ListPage holds pagination for task listings
type ListPage struct {
	Page     int
	PageSize int
}

// ListMyTasks returns the actor's own tasks, private ones included
func (s *TaskService) ListMyTasks(actor *models.User, page ListPage) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		CreatorID: &actor.ID,
		Page:      page.Page,
		PageSize:  page.PageSize,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// ListTeamTasks returns the non-private tasks carrying the actor's team
// snapshot. Private tasks never appear here, whoever asks.
func (s *TaskService) ListTeamTasks(actor *models.User, page ListPage) ([]models.Task, int64, error) {
	if !actor.HasTeam() {
		return nil, 0, ErrNotInAnyTeam
	}

	filter := repository.TaskFilter{
		TeamID:         actor.TeamID,
		ExcludePrivate: true,
		Page:           page.Page,
		PageSize:       page.PageSize,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list team tasks: %w", err)
	}
	return tasks, total, nil
}

// GetTask returns a task if the actor is allowed to view it
func (s *TaskService) GetTask(taskID uint64, actor *models.User) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if err := authorizeTaskAccess(task, actor); err != nil {
		return nil, err
	}

	return task, nil
}

// CreateTask creates a new task owned by the actor. The task's team is a
// snapshot of the actor's team at this moment, set unconditionally.
func (s *TaskService) CreateTask(actor *models.User, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || strings.TrimSpace(input.Description) == "" || input.DueDate == nil {
		return nil, ErrTaskFieldsRequired
	}
	if len(title) > constants.MaxTaskTitleLength {
		return nil, ErrTitleTooLong
	}
	if len(input.Description) > constants.MaxTaskDescriptionLength {
		return nil, ErrDescriptionTooLong
	}

	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, ErrInvalidPriority
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		DueDate:     *input.DueDate,
		Priority:    priority,
		Status:      models.TaskStatusPending,
		IsPrivate:   input.IsPrivate,
		CreatorID:   actor.ID,
		TeamID:      actor.TeamID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Creator")
}

// UpdateTask updates a task if the actor is allowed to modify it
func (s *TaskService) UpdateTask(taskID uint64, actor *models.User, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if err := authorizeTaskAccess(task, actor); err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTaskFieldsRequired
		}
		if len(title) > constants.MaxTaskTitleLength {
			return nil, ErrTitleTooLong
		}
		task.Title = title
	}
	if input.Description != nil {
		if strings.TrimSpace(*input.Description) == "" {
			return nil, ErrTaskFieldsRequired
		}
		if len(*input.Description) > constants.MaxTaskDescriptionLength {
			return nil, ErrDescriptionTooLong
		}
		task.Description = *input.Description
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}
	if input.Priority != nil {
		if !models.ValidPriority(*input.Priority) {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		if !models.ValidStatus(*input.Status) {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.IsPrivate != nil {
		task.IsPrivate = *input.IsPrivate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Creator")
}

// DeleteTask deletes a task if the actor is allowed to delete it
func (s *TaskService) DeleteTask(taskID uint64, actor *models.User) error {
	task, err := s.findTask(taskID)
	if err != nil {
		return err
	}

	if err := authorizeTaskAccess(task, actor); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

func (s *TaskService) findTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Creator")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}
