package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	readingdomain "github.com/openwater/aquabill/internal/reading/domain"
)

type submitReadingRequest struct {
	CustomerID     string  `json:"customer_id"`
	ConnectionID   string  `json:"connection_id"`
	CurrentReading float64 `json:"current_reading"`
	ImagePath      string  `json:"image_path"`
	Notes          string  `json:"notes"`
}

func (s *Server) SubmitReading(c *gin.Context) {
	var req submitReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.readingSvc.Submit(c.Request.Context(), readingdomain.SubmitReadingRequest{
		CustomerID:     strings.TrimSpace(req.CustomerID),
		ConnectionID:   strings.TrimSpace(req.ConnectionID),
		CurrentReading: req.CurrentReading,
		ImagePath:      strings.TrimSpace(req.ImagePath),
		Notes:          strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetReadingByID(c *gin.Context) {
	resp, err := s.readingSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListConnectionReadings(c *gin.Context) {
	var query struct {
		PageSize int `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.readingSvc.ListByConnection(c.Request.Context(), readingdomain.ListReadingsRequest{
		ConnectionID: strings.TrimSpace(c.Param("id")),
		PageSize:     query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
