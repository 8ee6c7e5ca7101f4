package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type createCharacterRequest struct {
	Name  string         `json:"name"`
	Sheet datatypes.JSON `json:"sheet"`
}

func (s *Server) handleListCharacters(c *gin.Context) {
	campaignID, ok := idParam(c)
	if !ok {
		return
	}
	membership, err := s.campaigns.GetMembership(c.Request.Context(), campaignID, principal(c).Email)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	characters, err := s.characters.List(c.Request.Context(), membership.ID)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"characters": characters})
}

func (s *Server) handleCreateCharacter(c *gin.Context) {
	campaignID, ok := idParam(c)
	if !ok {
		return
	}
	var req createCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	character, err := s.characters.Create(c.Request.Context(), principal(c), campaignID, req.Name, req.Sheet)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, character)
}

func (s *Server) handleActivateCharacter(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	character, err := s.characters.SetActive(c.Request.Context(), principal(c), id)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, character)
}

func (s *Server) handleRetireCharacter(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	character, err := s.characters.Retire(c.Request.Context(), principal(c), id)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, character)
}

func (s *Server) handleCharacterDeath(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	character, err := s.characters.MarkDead(c.Request.Context(), principal(c), id)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, character)
}
