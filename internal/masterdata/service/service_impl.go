package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	masterdomain "github.com/smallbiznis/salesinvoice/internal/masterdata/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  masterdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  masterdomain.Repository
}

func New(p Params) masterdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("masterdata.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) CreateSalesPerson(ctx context.Context, req masterdomain.CreateSalesPersonRequest) (*masterdomain.SalesPersonResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, masterdomain.ErrInvalidName
	}

	now := time.Now().UTC()
	sp := &masterdomain.SalesPerson{
		ID:        s.genID.Generate(),
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertSalesPerson(ctx, s.db, sp); err != nil {
		return nil, err
	}

	resp := toSalesPersonResponse(sp)
	return &resp, nil
}

func (s *Service) ListSalesPersons(ctx context.Context) ([]masterdomain.SalesPersonResponse, error) {
	items, err := s.repo.ListSalesPersons(ctx, s.db, nil)
	if err != nil {
		return nil, err
	}
	resp := make([]masterdomain.SalesPersonResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toSalesPersonResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) GetSalesPerson(ctx context.Context, id string) (*masterdomain.SalesPersonResponse, error) {
	sp, err := s.loadSalesPerson(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toSalesPersonResponse(sp)
	return &resp, nil
}

func (s *Service) UpdateSalesPerson(ctx context.Context, req masterdomain.UpdateSalesPersonRequest) (*masterdomain.SalesPersonResponse, error) {
	sp, err := s.loadSalesPerson(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, masterdomain.ErrInvalidName
		}
		sp.Name = name
	}
	sp.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateSalesPerson(ctx, s.db, sp); err != nil {
		return nil, err
	}
	resp := toSalesPersonResponse(sp)
	return &resp, nil
}

func (s *Service) DeleteSalesPerson(ctx context.Context, id string) error {
	sp, err := s.loadSalesPerson(ctx, id)
	if err != nil {
		return err
	}
	sp.IsActive = false
	sp.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateSalesPerson(ctx, s.db, sp); err != nil {
		return err
	}
	s.log.Info("sales person deactivated", zap.String("sales_person_id", sp.ID.String()))
	return nil
}

func (s *Service) loadSalesPerson(ctx context.Context, id string) (*masterdomain.SalesPerson, error) {
	spID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	sp, err := s.repo.FindSalesPerson(ctx, s.db, spID)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		return nil, masterdomain.ErrNotFound
	}
	return sp, nil
}

func (s *Service) CreateContractor(ctx context.Context, req masterdomain.CreateContractorRequest) (*masterdomain.ContractorResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, masterdomain.ErrInvalidName
	}

	now := time.Now().UTC()
	c := &masterdomain.Contractor{
		ID:        s.genID.Generate(),
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertContractor(ctx, s.db, c); err != nil {
		return nil, err
	}
	resp := toContractorResponse(c)
	return &resp, nil
}

func (s *Service) ListContractors(ctx context.Context) ([]masterdomain.ContractorResponse, error) {
	items, err := s.repo.ListContractors(ctx, s.db)
	if err != nil {
		return nil, err
	}
	resp := make([]masterdomain.ContractorResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toContractorResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) UpdateContractor(ctx context.Context, req masterdomain.UpdateContractorRequest) (*masterdomain.ContractorResponse, error) {
	c, err := s.loadContractor(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, masterdomain.ErrInvalidName
		}
		c.Name = name
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateContractor(ctx, s.db, c); err != nil {
		return nil, err
	}
	resp := toContractorResponse(c)
	return &resp, nil
}

func (s *Service) DeleteContractor(ctx context.Context, id string) error {
	c, err := s.loadContractor(ctx, id)
	if err != nil {
		return err
	}
	c.IsActive = false
	c.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateContractor(ctx, s.db, c)
}

func (s *Service) loadContractor(ctx context.Context, id string) (*masterdomain.Contractor, error) {
	cID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.FindContractor(ctx, s.db, cID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, masterdomain.ErrNotFound
	}
	return c, nil
}

func (s *Service) CreateProduct(ctx context.Context, req masterdomain.CreateProductRequest) (*masterdomain.ProductResponse, error) {
	now := time.Now().UTC()
	p := &masterdomain.Product{
		ID:                s.genID.Generate(),
		Name:              strings.TrimSpace(req.Name),
		Price:             req.Price,
		DiscountExclusion: req.DiscountExclusion,
		QuotaExclusion:    req.QuotaExclusion,
		QuotaTarget:       req.QuotaTarget,
		DisplayOrder:      req.DisplayOrder,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.InsertProduct(ctx, s.db, p); err != nil {
		return nil, err
	}
	resp := toProductResponse(p)
	return &resp, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]masterdomain.ProductResponse, error) {
	items, err := s.repo.ListProducts(ctx, s.db)
	if err != nil {
		return nil, err
	}
	resp := make([]masterdomain.ProductResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toProductResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*masterdomain.ProductResponse, error) {
	p, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProductResponse(p)
	return &resp, nil
}

func (s *Service) UpdateProduct(ctx context.Context, req masterdomain.UpdateProductRequest) (*masterdomain.ProductResponse, error) {
	p, err := s.loadProduct(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.DiscountExclusion != nil {
		p.DiscountExclusion = *req.DiscountExclusion
	}
	if req.QuotaExclusion != nil {
		p.QuotaExclusion = *req.QuotaExclusion
	}
	if req.QuotaTarget != nil {
		p.QuotaTarget = *req.QuotaTarget
	}
	if req.DisplayOrder != nil {
		p.DisplayOrder = *req.DisplayOrder
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateProduct(ctx, s.db, p); err != nil {
		return nil, err
	}
	resp := toProductResponse(p)
	return &resp, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	p, err := s.loadProduct(ctx, id)
	if err != nil {
		return err
	}
	p.IsActive = false
	p.UpdatedAt = time.Now().UTC()
	return s.repo.UpdateProduct(ctx, s.db, p)
}

func (s *Service) loadProduct(ctx context.Context, id string) (*masterdomain.Product, error) {
	pID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.FindProduct(ctx, s.db, pID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, masterdomain.ErrNotFound
	}
	return p, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, masterdomain.ErrInvalidID
	}
	return id, nil
}

func toSalesPersonResponse(sp *masterdomain.SalesPerson) masterdomain.SalesPersonResponse {
	return masterdomain.SalesPersonResponse{
		ID:        sp.ID.String(),
		Name:      sp.Name,
		CreatedAt: sp.CreatedAt,
		UpdatedAt: sp.UpdatedAt,
	}
}

func toContractorResponse(c *masterdomain.Contractor) masterdomain.ContractorResponse {
	return masterdomain.ContractorResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toProductResponse(p *masterdomain.Product) masterdomain.ProductResponse {
	return masterdomain.ProductResponse{
		ID:                p.ID.String(),
		Name:              p.Name,
		Price:             p.Price,
		DiscountExclusion: p.DiscountExclusion,
		QuotaExclusion:    p.QuotaExclusion,
		QuotaTarget:       p.QuotaTarget,
		DisplayOrder:      p.DisplayOrder,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
