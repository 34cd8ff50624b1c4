package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	discountdomain "github.com/smallbiznis/salesinvoice/internal/discount/domain"
	taxdomain "github.com/smallbiznis/salesinvoice/internal/tax/domain"
)

// -------- Discount tiers --------

func (s *Server) CreateDiscountTier(c *gin.Context) {
	var req discountdomain.CreateRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Audience = parseAudience(string(req.Audience))

	resp, err := s.discountSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListDiscountTiers(c *gin.Context) {
	resp, err := s.discountSvc.List(c.Request.Context(), parseAudience(c.Query("audience")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateDiscountTier(c *gin.Context) {
	var req discountdomain.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = pathID(c)

	resp, err := s.discountSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteDiscountTier(c *gin.Context) {
	if err := s.discountSvc.Delete(c.Request.Context(), pathID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// -------- Tax rates --------

func (s *Server) CreateTaxRate(c *gin.Context) {
	var req taxdomain.CreateRequest
	if !bindJSON(c, &req) {
		return
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)

	resp, err := s.taxSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListTaxRates(c *gin.Context) {
	resp, err := s.taxSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTaxRate(c *gin.Context) {
	var req taxdomain.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = pathID(c)

	resp, err := s.taxSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteTaxRate(c *gin.Context) {
	if err := s.taxSvc.Delete(c.Request.Context(), pathID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
