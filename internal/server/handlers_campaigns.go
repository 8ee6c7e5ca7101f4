package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createCampaignRequest struct {
	Name string `json:"name"`
}

type joinCampaignRequest struct {
	DisplayName string `json:"display_name"`
}

func (s *Server) handleMe(c *gin.Context) {
	user, err := s.identity.Resolve(c.Request.Context(), nil, principal(c))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// handleLogout severs the cookie binding. Bearer tokens are not revoked;
// they stay valid until they expire.
func (s *Server) handleLogout(c *gin.Context) {
	s.sessions.Clear(c)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListUserCampaigns(c *gin.Context) {
	campaigns, err := s.campaigns.ListUserCampaigns(c.Request.Context(), principal(c).Email)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

func (s *Server) handleListOpenCampaigns(c *gin.Context) {
	campaigns, err := s.campaigns.ListOpenCampaigns(c.Request.Context())
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

func (s *Server) handleCreateCampaign(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	campaign, err := s.campaigns.CreateCampaign(c.Request.Context(), principal(c), req.Name)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

func (s *Server) handleGetCampaign(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	campaign, err := s.campaigns.GetCampaign(c.Request.Context(), id)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (s *Server) handleJoinCampaign(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req joinCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p := principal(c)
	if req.DisplayName != "" {
		p.Name = req.DisplayName
	}
	result, err := s.campaigns.Join(c.Request.Context(), id, p)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	status := http.StatusCreated
	if result.AlreadyMember {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"membership":     result.Membership,
		"already_member": result.AlreadyMember,
	})
}

func (s *Server) handleGetMembership(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	membership, err := s.campaigns.GetMembership(c.Request.Context(), id, principal(c).Email)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, membership)
}
