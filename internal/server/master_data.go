package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	masterdomain "github.com/smallbiznis/salesinvoice/internal/masterdata/domain"
)

// -------- Sales persons --------

func (s *Server) CreateSalesPerson(c *gin.Context) {
	var req masterdomain.CreateSalesPersonRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.masterSvc.CreateSalesPerson(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListSalesPersons(c *gin.Context) {
	resp, err := s.masterSvc.ListSalesPersons(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSalesPersonByID(c *gin.Context) {
	resp, err := s.masterSvc.GetSalesPerson(c.Request.Context(), pathID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateSalesPerson(c *gin.Context) {
	var req masterdomain.UpdateSalesPersonRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = pathID(c)

	resp, err := s.masterSvc.UpdateSalesPerson(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteSalesPerson(c *gin.Context) {
	if err := s.masterSvc.DeleteSalesPerson(c.Request.Context(), pathID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// -------- Contractors --------

func (s *Server) CreateContractor(c *gin.Context) {
	var req masterdomain.CreateContractorRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.masterSvc.CreateContractor(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListContractors(c *gin.Context) {
	resp, err := s.masterSvc.ListContractors(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateContractor(c *gin.Context) {
	var req masterdomain.UpdateContractorRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = pathID(c)

	resp, err := s.masterSvc.UpdateContractor(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteContractor(c *gin.Context) {
	if err := s.masterSvc.DeleteContractor(c.Request.Context(), pathID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// -------- Products --------

func (s *Server) CreateProduct(c *gin.Context) {
	var req masterdomain.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := s.masterSvc.CreateProduct(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	resp, err := s.masterSvc.ListProducts(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProductByID(c *gin.Context) {
	resp, err := s.masterSvc.GetProduct(c.Request.Context(), pathID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req masterdomain.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = pathID(c)

	resp, err := s.masterSvc.UpdateProduct(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	if err := s.masterSvc.DeleteProduct(c.Request.Context(), pathID(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
