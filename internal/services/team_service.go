package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/teamtaskhq/team-task-api/internal/constants"
	"github.com/teamtaskhq/team-task-api/internal/models"
	"github.com/teamtaskhq/team-task-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTeamNotFound           = errors.New("team not found")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrTeamNameTooLong        = errors.New("team name is too long")
	ErrTeamDescriptionTooLong = errors.New("team description is too long")
	ErrTeamNameTaken          = errors.New("team name already exists")
	ErrAlreadyInTeam          = errors.New("you are already part of a team")
	ErrAlreadyTeamMember      = errors.New("you are already a member of this team")
	ErrAdminCannotLeave       = errors.New("admin cannot leave the team, delete the team instead")
	ErrOnlyTeamAdmin          = errors.New("only the team admin can delete the team")
)

// TeamService provides business logic for team membership operations.
type TeamService struct {
	teamRepo repository.TeamRepository
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository) *TeamService {
	return &TeamService{
		teamRepo: teamRepo,
	}
}

// CreateTeamInput represents parameters to create a new team.
type CreateTeamInput struct {
	Name        string
	Description string
}

// CreateTeam creates a team with the actor as its admin and sole member.
// The actor must not belong to a team yet.
func (s *TeamService) CreateTeam(actor *models.User, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	if len(name) > constants.MaxTeamNameLength {
		return nil, ErrTeamNameTooLong
	}
	if len(input.Description) > constants.MaxTeamDescriptionLength {
		return nil, ErrTeamDescriptionTooLong
	}

	if actor.HasTeam() {
		return nil, ErrAlreadyInTeam
	}

	// Advisory pre-check; the unique index enforces the name under races.
	if _, err := s.teamRepo.FindByName(name); err == nil {
		return nil, ErrTeamNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check team name: %w", err)
	}

	team := &models.Team{
		Name:        name,
		Description: input.Description,
		AdminID:     actor.ID,
	}

	if err := s.teamRepo.CreateWithAdmin(team, actor); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrTeamNameTaken
		case errors.Is(err, repository.ErrUserTeamChanged):
			return nil, ErrAlreadyInTeam
		default:
			return nil, fmt.Errorf("failed to create team: %w", err)
		}
	}

	return s.teamRepo.FindByID(team.ID, "Admin", "Members", "Members.User")
}

// GetMyTeam returns the actor's team with its members.
func (s *TeamService) GetMyTeam(actor *models.User) (*models.Team, []models.TeamMember, error) {
	if !actor.HasTeam() {
		return nil, nil, ErrNotInAnyTeam
	}

	team, err := s.teamRepo.FindByID(*actor.TeamID, "Admin")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTeamNotFound
		}
		return nil, nil, fmt.Errorf("failed to find team: %w", err)
	}

	members, err := s.teamRepo.ListMembers(team.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list team members: %w", err)
	}

	return team, members, nil
}

// ListTeams returns all teams, for users looking for one to join.
func (s *TeamService) ListTeams() ([]models.Team, error) {
	teams, err := s.teamRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// JoinTeam adds the actor to an existing team as a regular member.
// Joining never grants the admin flag.
func (s *TeamService) JoinTeam(actor *models.User, teamID uint64) (*models.Team, error) {
	if actor.HasTeam() {
		return nil, ErrAlreadyInTeam
	}

	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}

	// Unreachable while the single-team invariant holds, but validated anyway.
	if _, err := s.teamRepo.FindMember(team.ID, actor.ID); err == nil {
		return nil, ErrAlreadyTeamMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	if err := s.teamRepo.AddMember(team, actor); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrAlreadyTeamMember
		case errors.Is(err, repository.ErrUserTeamChanged):
			return nil, ErrAlreadyInTeam
		default:
			return nil, fmt.Errorf("failed to join team: %w", err)
		}
	}

	return s.teamRepo.FindByID(team.ID, "Admin", "Members", "Members.User")
}

// LeaveTeam removes the actor from their team. The admin can never leave;
// the only way out for an admin is deleting the team.
func (s *TeamService) LeaveTeam(actor *models.User) error {
	if !actor.HasTeam() {
		return ErrNotInAnyTeam
	}

	team, err := s.teamRepo.FindByID(*actor.TeamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to find team: %w", err)
	}

	if team.AdminID == actor.ID {
		return ErrAdminCannotLeave
	}

	if err := s.teamRepo.RemoveMember(team, actor); err != nil {
		return fmt.Errorf("failed to leave team: %w", err)
	}

	return nil
}

// DeleteTeam destroys the team, clearing the team reference and admin flag
// from every member. Only the team's own admin may do this; a site-wide
// admin flag alone is not enough. Tasks created under the team keep their
// stale team snapshot.
func (s *TeamService) DeleteTeam(actor *models.User, teamID uint64) error {
	team, err := s.teamRepo.FindByID(teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to find team: %w", err)
	}

	if team.AdminID != actor.ID {
		return ErrOnlyTeamAdmin
	}

	if err := s.teamRepo.DeleteWithMembers(team.ID); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	// The bulk update cleared the actor's record along with every other
	// member's; callers re-resolve the principal rather than trusting a
	// stale in-memory copy.
	return nil
}
