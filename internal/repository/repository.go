package repository

import (
	"github.com/teamtaskhq/team-task-api/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination, newest first
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	CreatorID *uint64
	TeamID    *uint64
	// ExcludePrivate drops private tasks from the result set
	ExcludePrivate bool
	Page           int
	PageSize       int
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// CreateWithAdmin creates a team, its admin membership row, and the admin's
	// user record update within a single transaction
	CreateWithAdmin(team *models.Team, admin *models.User) error

	// FindByID finds a team by ID
	FindByID(id uint64, preload ...string) (*models.Team, error)

	// FindByName finds a team by its unique name
	FindByName(name string) (*models.Team, error)

	// List lists all teams with their admin preloaded
	List() ([]models.Team, error)

	// FindMember finds a specific team member
	FindMember(teamID, userID uint64) (*models.TeamMember, error)

	// ListMembers lists all members of a team with users preloaded
	ListMembers(teamID uint64) ([]models.TeamMember, error)

	// AddMember adds a user to the team and updates the user's record
	AddMember(team *models.Team, user *models.User) error

	// RemoveMember removes a user from the team and clears the user's record
	RemoveMember(team *models.Team, user *models.User) error

	// DeleteWithMembers deletes the team, its membership rows, and clears the
	// team reference and admin flag from every member in one transaction.
	// Tasks referencing the team are left untouched.
	DeleteWithMembers(teamID uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}
