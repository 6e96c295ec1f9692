package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/teamtaskhq/team-task-api/internal/constants"
	"github.com/teamtaskhq/team-task-api/internal/dto"
	"github.com/teamtaskhq/team-task-api/internal/models"
	"github.com/teamtaskhq/team-task-api/internal/repository"
	"github.com/teamtaskhq/team-task-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Task{},
	)
	suite.Require().NoError(err)

	taskRepo := repository.NewTaskRepository(suite.db)
	suite.handler = NewTaskHandler(services.NewTaskService(taskRepo))

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper functions to create test data
func (suite *TaskHandlerTestSuite) createTestUser(email string, isAdmin bool, teamID *uint64) *models.User {
	user := &models.User{
		Name:         email,
		Email:        email,
		PasswordHash: "hashedpassword",
		IsAdmin:      isAdmin,
		TeamID:       teamID,
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskHandlerTestSuite) createTestTeam(name string, adminID uint64) *models.Team {
	team := &models.Team{
		Name:    name,
		AdminID: adminID,
	}
	suite.db.Create(team)
	return team
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, creator *models.User, isPrivate bool) *models.Task {
	task := &models.Task{
		Title:       title,
		Description: "Test Description",
		DueDate:     time.Now().Add(24 * time.Hour),
		Priority:    models.TaskPriorityMedium,
		Status:      models.TaskStatusPending,
		IsPrivate:   isPrivate,
		CreatorID:   creator.ID,
		TeamID:      creator.TeamID,
	}
	suite.db.Create(task)
	return task
}

// Helper function to create an authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, principal *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, principal.ID)
	c.Set(constants.ContextKeyPrincipal, principal)

	return c, w
}

func (suite *TaskHandlerTestSuite) setTaskParam(c *gin.Context, taskID uint64) {
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", taskID)}}
}

// TestListTasks_OnlyOwn tests that the listing returns the actor's tasks only
func (suite *TaskHandlerTestSuite) TestListTasks_OnlyOwn() {
	user := suite.createTestUser("me@example.com", false, nil)
	other := suite.createTestUser("other@example.com", false, nil)

	suite.createTestTask("Mine", user, false)
	suite.createTestTask("Mine private", user, true)
	suite.createTestTask("Not mine", other, false)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskListResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response.Tasks, 2)
	assert.Equal(suite.T(), int64(2), response.Pagination.Total)
	for _, task := range response.Tasks {
		assert.Equal(suite.T(), user.ID, task.CreatorID)
	}
}

// TestListTasks_Unauthorized tests listing without authentication
func (suite *TaskHandlerTestSuite) TestListTasks_Unauthorized() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/tasks", nil)
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestGetTask_Owner tests task retrieval by its creator
func (suite *TaskHandlerTestSuite) TestGetTask_Owner() {
	user := suite.createTestUser("me@example.com", false, nil)
	task := suite.createTestTask("Test Task", user, false)

	c, w := suite.createAuthContext("GET", fmt.Sprintf("/api/tasks/%d", task.ID), nil, user)
	suite.setTaskParam(c, task.ID)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), task.Title, response.Title)
}

// TestGetTask_PrivateDeniedToAdmin tests the privacy rule beats the admin flag
func (suite *TaskHandlerTestSuite) TestGetTask_PrivateDeniedToAdmin() {
	owner := suite.createTestUser("owner@example.com", false, nil)
	admin := suite.createTestUser("admin@example.com", true, nil)
	task := suite.createTestTask("Secret", owner, true)

	c, w := suite.createAuthContext("GET", fmt.Sprintf("/api/tasks/%d", task.ID), nil, admin)
	suite.setTaskParam(c, task.ID)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestGetTask_PublicAllowedForAdmin tests the admin override on public tasks
func (suite *TaskHandlerTestSuite) TestGetTask_PublicAllowedForAdmin() {
	owner := suite.createTestUser("owner@example.com", false, nil)
	admin := suite.createTestUser("admin@example.com", true, nil)
	task := suite.createTestTask("Open", owner, false)

	c, w := suite.createAuthContext("GET", fmt.Sprintf("/api/tasks/%d", task.ID), nil, admin)
	suite.setTaskParam(c, task.ID)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

// TestGetTask_NotFound tests retrieval of a missing task
func (suite *TaskHandlerTestSuite) TestGetTask_NotFound() {
	user := suite.createTestUser("me@example.com", false, nil)

	c, w := suite.createAuthContext("GET", "/api/tasks/999", nil, user)
	suite.setTaskParam(c, 999)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestCreateTask_Success tests task creation with the team snapshot
func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	admin := suite.createTestUser("admin@example.com", true, nil)
	team := suite.createTestTeam("Red", admin.ID)
	admin.TeamID = &team.ID
	suite.db.Save(admin)

	payload := map[string]interface{}{
		"title":       "New Task",
		"description": "Something to do",
		"due_date":    time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"priority":    "high",
	}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, admin)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response dto.TaskDTO
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New Task", response.Title)
	assert.Equal(suite.T(), models.TaskPriorityHigh, response.Priority)
	assert.Equal(suite.T(), models.TaskStatusPending, response.Status)
	if assert.NotNil(suite.T(), response.TeamID) {
		assert.Equal(suite.T(), team.ID, *response.TeamID)
	}
}

// TestCreateTask_MissingFields tests creation without required fields
func (suite *TaskHandlerTestSuite) TestCreateTask_MissingFields() {
	user := suite.createTestUser("me@example.com", false, nil)

	payload := map[string]interface{}{
		"title": "No description or due date",
	}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateTask_Forbidden tests that a stranger cannot update a task
func (suite *TaskHandlerTestSuite) TestUpdateTask_Forbidden() {
	owner := suite.createTestUser("owner@example.com", false, nil)
	stranger := suite.createTestUser("stranger@example.com", false, nil)
	task := suite.createTestTask("Test Task", owner, false)

	payload := map[string]interface{}{"title": "Hijacked"}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("PATCH", fmt.Sprintf("/api/tasks/%d", task.ID), body, stranger)
	suite.setTaskParam(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestDeleteTask_Owner tests deletion by the task's creator
func (suite *TaskHandlerTestSuite) TestDeleteTask_Owner() {
	user := suite.createTestUser("me@example.com", false, nil)
	task := suite.createTestTask("Test Task", user, false)

	c, w := suite.createAuthContext("DELETE", fmt.Sprintf("/api/tasks/%d", task.ID), nil, user)
	suite.setTaskParam(c, task.ID)

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	err := suite.db.First(&models.Task{}, task.ID).Error
	assert.ErrorIs(suite.T(), err, gorm.ErrRecordNotFound)
}

// TestListTeamTasks_FiltersPrivate tests team listing hides private tasks
func (suite *TaskHandlerTestSuite) TestListTeamTasks_FiltersPrivate() {
	admin := suite.createTestUser("admin@example.com", true, nil)
	team := suite.createTestTeam("Red", admin.ID)
	admin.TeamID = &team.ID
	suite.db.Save(admin)

	member := suite.createTestUser("member@example.com", false, &team.ID)
	suite.createTestTask("Public", member, false)
	suite.createTestTask("Private", member, true)

	c, w := suite.createAuthContext("GET", "/api/tasks/team", nil, admin)

	suite.handler.ListTeamTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskListResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response.Tasks, 1)
	assert.Equal(suite.T(), "Public", response.Tasks[0].Title)
}

// TestListTeamTasks_NoTeam tests team listing without a team
func (suite *TaskHandlerTestSuite) TestListTeamTasks_NoTeam() {
	admin := suite.createTestUser("admin@example.com", true, nil)

	c, w := suite.createAuthContext("GET", "/api/tasks/team", nil, admin)

	suite.handler.ListTeamTasks(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
