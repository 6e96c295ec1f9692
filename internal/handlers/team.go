package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamtaskhq/team-task-api/internal/dto"
	apierrors "github.com/teamtaskhq/team-task-api/internal/errors"
	"github.com/teamtaskhq/team-task-api/internal/middleware"
	"github.com/teamtaskhq/team-task-api/internal/services"
)

// TeamHandler coordinates team-related HTTP handlers.
type TeamHandler struct {
	teamService *services.TeamService
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// CreateTeam creates a new team with the current user as admin
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTeamRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Please provide a team name")
		return
	}

	team, err := h.teamService.CreateTeam(principal, services.CreateTeamInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamDetailDTO(*team, team.Members))
}

// ListTeams returns all teams, for users looking for one to join
func (h *TeamHandler) ListTeams(c *gin.Context) {
	teams, err := h.teamService.ListTeams()
	if err != nil {
		respondTeamError(c, err)
		return
	}

	teamDTOs := make([]dto.TeamDTO, len(teams))
	for i, team := range teams {
		teamDTOs[i] = dto.ToTeamDTO(team)
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(teamDTOs),
		"teams": teamDTOs,
	})
}

// GetMyTeam returns the current user's team with its members
func (h *TeamHandler) GetMyTeam(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	team, members, err := h.teamService.GetMyTeam(principal)
	if err != nil {
		if errors.Is(err, services.ErrNotInAnyTeam) {
			apierrors.NotFound(c, err.Error())
			return
		}
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDetailDTO(*team, members))
}

// JoinTeam adds the current user to a team
func (h *TeamHandler) JoinTeam(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	teamID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid team ID")
		return
	}

	team, err := h.teamService.JoinTeam(principal, teamID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully joined the team",
		"team":    dto.ToTeamDetailDTO(*team, team.Members),
	})
}

// LeaveTeam removes the current user from their team
func (h *TeamHandler) LeaveTeam(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.teamService.LeaveTeam(principal); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully left the team",
	})
}

// DeleteTeam destroys the current user's team
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	principal, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	teamID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid team ID")
		return
	}

	if err := h.teamService.DeleteTeam(principal, teamID); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Team deleted successfully",
	})
}

func respondTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTeamNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrOnlyTeamAdmin):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTeamNameTaken),
		errors.Is(err, services.ErrAlreadyTeamMember):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrAlreadyInTeam),
		errors.Is(err, services.ErrAdminCannotLeave),
		errors.Is(err, services.ErrNotInAnyTeam):
		apierrors.InvalidOperation(c, err.Error())
	case errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrTeamNameTooLong),
		errors.Is(err, services.ErrTeamDescriptionTooLong):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
