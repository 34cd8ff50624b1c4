package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	notedomain "github.com/smallbiznis/salesinvoice/internal/deliverynote/domain"
)

func (s *Server) CreateDeliveryNote(c *gin.Context) {
	var req notedomain.CreateRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.noteSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListDeliveryNotes(c *gin.Context) {
	var query notedomain.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	query.SalesPersonID = strings.TrimSpace(query.SalesPersonID)
	query.From = strings.TrimSpace(query.From)
	query.To = strings.TrimSpace(query.To)

	resp, err := s.noteSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDeliveryNoteByID(c *gin.Context) {
	resp, err := s.noteSvc.Get(c.Request.Context(), pathID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateDeliveryNote(c *gin.Context) {
	var req notedomain.UpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = pathID(c)

	resp, err := s.noteSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteDeliveryNote(c *gin.Context) {
	if err := s.noteSvc.Delete(c.Request.Context(), pathID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
