package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/salesinvoice/internal/invoice/domain"
)

func (s *Server) GenerateInvoice(c *gin.Context) {
	var req invoicedomain.GenerateRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.invoiceSvc.Generate(c.Request.Context(), invoicedomain.GenerateRequest{
		SalesPersonID: strings.TrimSpace(req.SalesPersonID),
		StartDate:     strings.TrimSpace(req.StartDate),
		EndDate:       strings.TrimSpace(req.EndDate),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GenerateInvoicesBulk(c *gin.Context) {
	var req invoicedomain.BulkGenerateRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ClosingDate = strings.TrimSpace(req.ClosingDate)

	resp, err := s.invoiceSvc.GenerateBulk(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query invoicedomain.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	query.SalesPersonID = strings.TrimSpace(query.SalesPersonID)

	resp, err := s.invoiceSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.Get(c.Request.Context(), pathID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceDocument(c *gin.Context) {
	resp, err := s.invoiceSvc.Document(c.Request.Context(), pathID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// PreviewInvoice serves the HTML layout the PDF renderer prints from.
func (s *Server) PreviewInvoice(c *gin.Context) {
	html, err := s.invoiceSvc.RenderHTML(c.Request.Context(), pathID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (s *Server) PatchInvoice(c *gin.Context) {
	var req invoicedomain.PatchRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = pathID(c)

	resp, err := s.invoiceSvc.Patch(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) OverrideInvoiceDiscount(c *gin.Context) {
	var req invoicedomain.OverrideDiscountRequest
	if !bindJSON(c, &req) {
		return
	}
	req.InvoiceID = pathID(c)
	req.DiscountRateID = strings.TrimSpace(req.DiscountRateID)

	resp, err := s.invoiceSvc.OverrideDiscount(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	if err := s.invoiceSvc.Delete(c.Request.Context(), pathID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
