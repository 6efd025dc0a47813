package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/openwater/aquabill/internal/invoice/domain"
	paymentdomain "github.com/openwater/aquabill/internal/payment/domain"
)

type createInfractionRequest struct {
	CustomerID   string  `json:"customer_id"`
	ConnectionID string  `json:"connection_id"`
	Description  string  `json:"description"`
	Amount       float64 `json:"amount"`
}

func (s *Server) CreateInfractionInvoice(c *gin.Context) {
	var req createInfractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.CreateInfraction(c.Request.Context(), invoicedomain.CreateInfractionRequest{
		CustomerID:   strings.TrimSpace(req.CustomerID),
		ConnectionID: strings.TrimSpace(req.ConnectionID),
		Description:  strings.TrimSpace(req.Description),
		Amount:       req.Amount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListCustomerInvoices(c *gin.Context) {
	var query struct {
		Status   string `form:"status"`
		PageSize int    `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.ListByCustomer(c.Request.Context(), invoicedomain.ListInvoicesRequest{
		CustomerID: strings.TrimSpace(c.Param("id")),
		Status:     strings.TrimSpace(query.Status),
		PageSize:   query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCustomerPayments(c *gin.Context) {
	var query struct {
		PageSize int `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.ListByCustomer(c.Request.Context(), paymentdomain.ListPaymentsRequest{
		CustomerID: strings.TrimSpace(c.Param("id")),
		PageSize:   query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
