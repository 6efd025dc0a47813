package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	connectiondomain "github.com/openwater/aquabill/internal/connection/domain"
)

type createConnectionRequest struct {
	CustomerID     string  `json:"customer_id"`
	SystemID       string  `json:"system_id"`
	Category       string  `json:"category"`
	InitialReading float64 `json:"initial_reading"`
	Address        string  `json:"address"`
}

func (s *Server) CreateConnection(c *gin.Context) {
	var req createConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.connectionSvc.Create(c.Request.Context(), connectiondomain.CreateConnectionRequest{
		CustomerID:     strings.TrimSpace(req.CustomerID),
		SystemID:       strings.TrimSpace(req.SystemID),
		Category:       strings.TrimSpace(req.Category),
		InitialReading: req.InitialReading,
		Address:        strings.TrimSpace(req.Address),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetConnectionByID(c *gin.Context) {
	resp, err := s.connectionSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCustomerConnections(c *gin.Context) {
	resp, err := s.connectionSvc.ListByCustomer(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
