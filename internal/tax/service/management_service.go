package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/salesinvoice/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type serviceParams struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  taxdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  taxdomain.Repository
}

func NewService(p serviceParams) taxdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tax.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]taxdomain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]taxdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Create(ctx context.Context, req taxdomain.CreateRequest) (*taxdomain.Response, error) {
	now := time.Now().UTC()
	record := &taxdomain.TaxRate{
		ID:          s.genID.Generate(),
		DisplayName: strings.TrimSpace(req.DisplayName),
		Rate:        req.Rate,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		return nil, err
	}

	s.log.Info("tax rate created",
		zap.String("tax_rate_id", record.ID.String()),
		zap.String("rate", record.Rate.String()),
	)
	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req taxdomain.UpdateRequest) (*taxdomain.Response, error) {
	item, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		item.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Rate != nil {
		item.Rate = *req.Rate
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := toResponse(item)
	return &resp, nil
}

// Delete deactivates the rate; the next lowest-id active row becomes current.
func (s *Service) Delete(ctx context.Context, id string) error {
	item, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	item.IsActive = false
	item.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, s.db, item)
}

func (s *Service) load(ctx context.Context, id string) (*taxdomain.TaxRate, error) {
	rateID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || rateID == 0 {
		return nil, taxdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, rateID)
	if err != nil {
		return nil, err
	}
	if item == nil || !item.IsActive {
		return nil, taxdomain.ErrNotFound
	}
	return item, nil
}

func toResponse(rate *taxdomain.TaxRate) taxdomain.Response {
	return taxdomain.Response{
		ID:          rate.ID.String(),
		DisplayName: rate.DisplayName,
		Rate:        rate.Rate,
		CreatedAt:   rate.CreatedAt,
		UpdatedAt:   rate.UpdatedAt,
	}
}
