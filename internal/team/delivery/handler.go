package delivery

import (
	"net/http"

	"kanban-backend/internal/team/usecase"
	"kanban-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// TeamHandler handles project, member and invitation requests
type TeamHandler struct {
	teamUsecase usecase.TeamUsecase
}

func NewTeamHandler(teamUsecase usecase.TeamUsecase) *TeamHandler {
	return &TeamHandler{teamUsecase: teamUsecase}
}

// POST /api/projects
func (h *TeamHandler) CreateProject(c *gin.Context) {
	var req usecase.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	project, err := h.teamUsecase.CreateProject(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// GET /api/projects
func (h *TeamHandler) ListProjects(c *gin.Context) {
	projects, err := h.teamUsecase.ListProjects(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GET /api/projects/:id
func (h *TeamHandler) GetProject(c *gin.Context) {
	project, err := h.teamUsecase.GetProject(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// PUT /api/projects/:id
func (h *TeamHandler) UpdateProject(c *gin.Context) {
	var req usecase.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	project, err := h.teamUsecase.UpdateProject(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// DELETE /api/projects/:id
func (h *TeamHandler) DeleteProject(c *gin.Context) {
	if err := h.teamUsecase.DeleteProject(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}

// GET /api/projects/:id/members
func (h *TeamHandler) ListMembers(c *gin.Context) {
	members, err := h.teamUsecase.ListMembers(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// PATCH /api/projects/:id/members/:userId
func (h *TeamHandler) UpdateMemberRole(c *gin.Context) {
	var req usecase.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	if err := h.teamUsecase.UpdateMemberRole(c.Request.Context(), c.GetString("userID"), c.Param("id"), c.Param("userId"), req.Role); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "role updated"})
}

// DELETE /api/projects/:id/members/:userId
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	if err := h.teamUsecase.RemoveMember(c.Request.Context(), c.GetString("userID"), c.Param("id"), c.Param("userId")); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}

// POST /api/projects/:id/invitations
func (h *TeamHandler) Invite(c *gin.Context) {
	var req usecase.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	inv, err := h.teamUsecase.Invite(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// GET /api/projects/:id/invitations
func (h *TeamHandler) ListInvitations(c *gin.Context) {
	invitations, err := h.teamUsecase.ListInvitations(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

// POST /api/invitations/accept?token=...
func (h *TeamHandler) AcceptInvitation(c *gin.Context) {
	inv, err := h.teamUsecase.AcceptInvitation(c.Request.Context(), c.GetString("userID"), c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// POST /api/invitations/decline?token=...
func (h *TeamHandler) DeclineInvitation(c *gin.Context) {
	inv, err := h.teamUsecase.DeclineInvitation(c.Request.Context(), c.GetString("userID"), c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// DELETE /api/invitations/:id
func (h *TeamHandler) RevokeInvitation(c *gin.Context) {
	if err := h.teamUsecase.RevokeInvitation(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "invitation revoked"})
}

// GET /api/team
func (h *TeamHandler) ListTeam(c *gin.Context) {
	members, err := h.teamUsecase.ListTeam(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}
