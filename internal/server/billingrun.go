package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	billingrundomain "github.com/iitsoft/asovec/internal/billingrun/domain"
)

func (s *Server) CreateBillingRun(c *gin.Context) {
	var req billingrundomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingRunSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBillingRuns(c *gin.Context) {
	resp, err := s.billingRunSvc.List(c.Request.Context(), c.Query("project_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBillingRun(c *gin.Context) {
	resp, err := s.billingRunSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GenerateBillingRun(c *gin.Context) {
	resp, err := s.billingRunSvc.Generate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ConfirmBillingRun(c *gin.Context) {
	resp, err := s.billingRunSvc.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelBillingRun(c *gin.Context) {
	resp, err := s.billingRunSvc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ResetBillingRunToDraft(c *gin.Context) {
	resp, err := s.billingRunSvc.ResetToDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) BillingStatement(c *gin.Context) {
	onlyCurrent, _ := strconv.ParseBool(c.DefaultQuery("only_current_customer", "false"))
	req := billingrundomain.StatementRequest{
		ProjectID:           c.Query("project_id"),
		ResidenceID:         c.Query("residence_id"),
		OnlyCurrentCustomer: onlyCurrent,
	}

	resp, err := s.billingRunSvc.Statement(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
