package main

import (
	"net/http"

	"go-openclaw-highlighter/internal/engine"
	"go-openclaw-highlighter/internal/models"
	"go-openclaw-highlighter/internal/page"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/html"
)

// keywordStore persists keyword sets posted to the API.
type keywordStore interface {
	Save(raw []string) ([]string, error)
}

type server struct {
	hl    *engine.Engine
	doc   *page.Document
	store keywordStore
	cfg   engine.Config
}

type highlightRequest struct {
	HTML     string   `json:"html" binding:"required"`
	Keywords []string `json:"keywords"`
}

type highlightResponse struct {
	HTML   string        `json:"html"`
	Report models.Report `json:"report"`
}

func newRouter(s *server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":  "Highlighter API is running!",
			"status":   "healthy",
			"keywords": len(s.hl.Keywords()),
		})
	})

	r.POST("/keywords", s.updateKeywords)
	r.POST("/highlight", s.highlight)
	r.PUT("/page", s.loadPage)
	r.GET("/page", s.currentPage)
	return r
}

// updateKeywords is the update request of the keyword collaborator.
func (s *server) updateKeywords(c *gin.Context) {
	var req models.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.UpdateResponse{Status: models.UpdateStatusError, Message: err.Error()})
		return
	}

	if req.Keywords != nil && s.store != nil {
		if _, err := s.store.Save(req.Keywords); err != nil {
			c.JSON(http.StatusInternalServerError, models.UpdateResponse{Status: models.UpdateStatusError, Message: err.Error()})
			return
		}
	}

	resp := s.hl.HandleUpdate(c.Request.Context(), req)
	if !resp.OK() {
		c.JSON(http.StatusBadRequest, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// highlight runs a one-off pass over posted HTML. Without keywords it uses
// the current set.
func (s *server) highlight(c *gin.Context) {
	var req highlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": models.UpdateStatusError, "message": err.Error()})
		return
	}
	set := req.Keywords
	if set == nil {
		set = s.hl.Keywords()
	}

	out, report, err := engine.Render(req.HTML, set, s.cfg)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": models.UpdateStatusError, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, highlightResponse{HTML: out, Report: report})
}

// loadPage replaces the watched session page, as a navigation would. The
// monitors pick the new content up on their own.
func (s *server) loadPage(c *gin.Context) {
	root, err := html.Parse(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": models.UpdateStatusError, "message": err.Error()})
		return
	}
	s.doc.Replace(root)
	c.Status(http.StatusAccepted)
}

func (s *server) currentPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(s.doc.String()))
}
