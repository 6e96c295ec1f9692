package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/teamtaskhq/team-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCreateTeam is returned when inserting the team record fails inside the create transaction.
	ErrCreateTeam = errors.New("team repository: create team failed")
	// ErrUpdateTeamUser is returned when updating a user's team fields fails inside a membership transaction.
	ErrUpdateTeamUser = errors.New("team repository: update user failed")
	// ErrUserTeamChanged is returned when a user's team field no longer matches what was read before the write.
	ErrUserTeamChanged = errors.New("team repository: user team changed since read")
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// CreateWithAdmin creates the team, the admin's membership row, and the admin's
// user record update atomically. The unique index on team name is the actual
// enforcement point for name collisions; callers should treat
// gorm.ErrDuplicatedKey as a conflict.
func (r *GormTeamRepository) CreateWithAdmin(team *models.Team, admin *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrCreateTeam, err)
		}

		if err := ensureAdminMembership(tx, team); err != nil {
			return err
		}

		// Guard against a concurrent join or create racing this one.
		res := tx.Model(&models.User{}).
			Where("id = ? AND team_id IS NULL", admin.ID).
			Updates(map[string]interface{}{"team_id": team.ID, "is_admin": true})
		if res.Error != nil {
			return fmt.Errorf("%w: %v", ErrUpdateTeamUser, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrUserTeamChanged
		}

		admin.TeamID = &team.ID
		admin.IsAdmin = true
		return nil
	})
}

// FindByID finds a team by ID
func (r *GormTeamRepository) FindByID(id uint64, preload ...string) (*models.Team, error) {
	var team models.Team
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// FindByName finds a team by its unique name
func (r *GormTeamRepository) FindByName(name string) (*models.Team, error) {
	var team models.Team
	if err := r.db.Where("name = ?", name).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// List lists all teams with their admin preloaded
func (r *GormTeamRepository) List() ([]models.Team, error) {
	var teams []models.Team
	if err := r.db.Preload("Admin").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// FindMember finds a specific team member
func (r *GormTeamRepository) FindMember(teamID, userID uint64) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a team with users preloaded
func (r *GormTeamRepository) ListMembers(teamID uint64) ([]models.TeamMember, error) {
	var members []models.TeamMember
	if err := r.db.Preload("User").
		Where("team_id = ?", teamID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// AddMember adds a user to the team and updates the user's record atomically
func (r *GormTeamRepository) AddMember(team *models.Team, user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureAdminMembership(tx, team); err != nil {
			return err
		}

		member := models.TeamMember{
			TeamID:   team.ID,
			UserID:   user.ID,
			JoinedAt: time.Now(),
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		// The user's team field must still be unset at write time.
		res := tx.Model(&models.User{}).
			Where("id = ? AND team_id IS NULL", user.ID).
			Updates(map[string]interface{}{"team_id": team.ID, "is_admin": false})
		if res.Error != nil {
			return fmt.Errorf("%w: %v", ErrUpdateTeamUser, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrUserTeamChanged
		}

		user.TeamID = &team.ID
		user.IsAdmin = false
		return nil
	})
}

// RemoveMember removes a user from the team and clears the user's record atomically
func (r *GormTeamRepository) RemoveMember(team *models.Team, user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ? AND user_id = ?", team.ID, user.ID).
			Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}

		if err := ensureAdminMembership(tx, team); err != nil {
			return err
		}

		res := tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]interface{}{"team_id": nil, "is_admin": false})
		if res.Error != nil {
			return fmt.Errorf("%w: %v", ErrUpdateTeamUser, res.Error)
		}

		user.TeamID = nil
		user.IsAdmin = false
		return nil
	})
}

// DeleteWithMembers deletes the team, its membership rows, and clears the team
// reference and admin flag from every member. Tasks keep their team snapshot.
func (r *GormTeamRepository) DeleteWithMembers(teamID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("team_id = ?", teamID).
			Updates(map[string]interface{}{"team_id": nil, "is_admin": false})
		if res.Error != nil {
			return fmt.Errorf("%w: %v", ErrUpdateTeamUser, res.Error)
		}

		if err := tx.Where("team_id = ?", teamID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}

		// Hard delete: a soft-deleted row would keep holding the unique name
		// and block it from ever being reused.
		return tx.Unscoped().Delete(&models.Team{}, teamID).Error
	})
}

// ensureAdminMembership inserts the admin's membership row if it is missing.
// Runs inside every transaction that persists the member set: the admin must
// always appear among the team's members.
func ensureAdminMembership(tx *gorm.DB, team *models.Team) error {
	member := models.TeamMember{
		TeamID:   team.ID,
		UserID:   team.AdminID,
		JoinedAt: time.Now(),
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
}
