package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"postdigest/internal/database"
	"postdigest/internal/domain"
	"postdigest/internal/newsletter"
	"postdigest/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	noPostsMessage     = "no posts found"
	latestNewsletterID = "latest"
	defaultListLimit   = 20
	maxListLimit       = 100
)

type fetchResponse struct {
	Fetched     int    `json:"fetched"`
	Kept        int    `json:"kept"`
	Visible     int    `json:"visible"`
	Excluded    int    `json:"excluded"`
	Duplicates  int    `json:"duplicates"`
	Expired     int    `json:"expired"`
	Rejected    int    `json:"rejected"`
	Message     string `json:"message,omitempty"`
	SourceError string `json:"sourceError,omitempty"`
}

type includedRequest struct {
	Included *bool `json:"included" binding:"required"`
}

type newsletterResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	PostCount int       `json:"postCount"`
	Context   string    `json:"context,omitempty"`
	Body      string    `json:"body,omitempty"`
}

func toNewsletterResponse(n domain.Newsletter, withContent bool) newsletterResponse {
	resp := newsletterResponse{
		ID:        n.ID,
		CreatedAt: n.CreatedAt,
		PostCount: n.PostCount,
	}

	if withContent {
		resp.Context = n.Context
		resp.Body = n.Body
	}

	return resp
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getPosts(c *gin.Context) {
	c.JSON(http.StatusOK, s.monitor.View())
}

func (s *Server) fetch(c *gin.Context) {
	result := s.monitor.Refresh(c.Request.Context())

	resp := fetchResponse{
		Fetched:    result.Fetched,
		Kept:       result.Kept,
		Visible:    result.Visible,
		Excluded:   result.Excluded,
		Duplicates: result.Duplicates,
		Expired:    result.Expired,
		Rejected:   result.Rejected(),
	}

	if result.Empty() {
		resp.Message = noPostsMessage
	}
	if result.SourceErr != nil {
		resp.SourceError = result.SourceErr.Error()
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) summarize(c *gin.Context) {
	n := s.monitor.Summarize(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"summarized": n})
}

func (s *Server) setIncluded(c *gin.Context) {
	var req includedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")

	if err := s.monitor.SetIncluded(id, *req.Included); err != nil {
		if errors.Is(err, session.ErrUnknownPost) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "included": *req.Included})
}

func (s *Server) excludePost(c *gin.Context) {
	id := c.Param("id")
	added := s.monitor.Exclude(c.Request.Context(), id)

	c.JSON(http.StatusOK, gin.H{"id": id, "excluded": true, "new": added})
}

func (s *Server) generateNewsletter(c *gin.Context) {
	n, err := s.monitor.GenerateNewsletter(c.Request.Context())
	if err != nil {
		status := http.StatusBadGateway

		switch {
		case errors.Is(err, newsletter.ErrEmptySelection):
			status = http.StatusConflict
		case errors.Is(err, newsletter.ErrSynthesizerUnavailable):
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toNewsletterResponse(n, true))
}

func (s *Server) listNewsletters(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid limit %q", raw)})
			return
		}

		limit = min(parsed, maxListLimit)
	}

	list, err := s.archive.ListNewsletters(c.Request.Context(), limit)
	if err != nil {
		s.log.ErrorContext(c.Request.Context(), "Failed to list newsletters",
			"error", err,
			"limit", limit)

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list newsletters"})
		return
	}

	resp := make([]newsletterResponse, 0, len(list))
	for _, n := range list {
		resp = append(resp, toNewsletterResponse(n, false))
	}

	c.JSON(http.StatusOK, resp)
}

// loadNewsletter prefers the session's last newsletter, which is present even
// when archiving it failed.
func (s *Server) loadNewsletter(ctx context.Context, id string) (domain.Newsletter, error) {
	if last, ok := s.monitor.LastNewsletter(); ok && (id == latestNewsletterID || id == last.ID) {
		return last, nil
	}

	if id == latestNewsletterID {
		return s.archive.LatestNewsletter(ctx)
	}

	return s.archive.GetNewsletter(ctx, id)
}

func (s *Server) downloadNewsletter(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	n, err := s.loadNewsletter(ctx, id)

	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		s.log.ErrorContext(ctx, "Failed to load newsletter",
			"error", err,
			"newsletterID", id)

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load newsletter"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", newsletter.FileName))
	c.Data(http.StatusOK, newsletter.MediaType, []byte(n.Body))
}
