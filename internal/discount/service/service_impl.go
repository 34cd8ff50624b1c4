package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	discountdomain "github.com/smallbiznis/salesinvoice/internal/discount/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  discountdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  discountdomain.Repository
}

func New(p Params) discountdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("discount.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req discountdomain.CreateRequest) (*discountdomain.Response, error) {
	now := time.Now().UTC()
	tier := &discountdomain.Tier{
		ID:        s.genID.Generate(),
		Audience:  discountdomain.Audience(strings.TrimSpace(string(req.Audience))),
		Rate:      req.Rate,
		Threshold: req.Threshold,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tier.Validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureUniqueThreshold(ctx, tx, tier); err != nil {
			return err
		}
		return s.repo.Insert(ctx, tx, tier)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("discount tier created",
		zap.String("discount_tier_id", tier.ID.String()),
		zap.String("audience", string(tier.Audience)),
		zap.String("rate", tier.Rate.String()),
		zap.Int64("threshold", tier.Threshold),
	)
	resp := toResponse(tier)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, audience discountdomain.Audience) ([]discountdomain.Response, error) {
	if !audience.Valid() {
		return nil, discountdomain.ErrInvalidAudience
	}
	items, err := s.repo.ListActive(ctx, s.db, audience)
	if err != nil {
		return nil, err
	}
	resp := make([]discountdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req discountdomain.UpdateRequest) (*discountdomain.Response, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var updated *discountdomain.Tier
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tier, err := s.repo.FindActive(ctx, tx, id)
		if err != nil {
			return err
		}
		if tier == nil {
			return discountdomain.ErrNotFound
		}

		wasFloor := tier.IsFloor()
		if req.Rate != nil {
			tier.Rate = *req.Rate
		}
		if req.Threshold != nil {
			tier.Threshold = *req.Threshold
		}
		if err := tier.Validate(); err != nil {
			return err
		}
		if wasFloor && !tier.IsFloor() {
			return discountdomain.ErrFloorTierRequired
		}
		if err := s.ensureUniqueThreshold(ctx, tx, tier); err != nil {
			return err
		}

		tier.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, tx, tier); err != nil {
			return err
		}
		updated = tier
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toResponse(updated)
	return &resp, nil
}

// Delete deactivates the tier. Issued invoices keep their reference.
func (s *Service) Delete(ctx context.Context, id string) error {
	tierID, err := parseID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tier, err := s.repo.FindActive(ctx, tx, tierID)
		if err != nil {
			return err
		}
		if tier == nil {
			return discountdomain.ErrNotFound
		}
		if tier.IsFloor() {
			return discountdomain.ErrFloorTierRequired
		}
		tier.IsActive = false
		tier.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, tx, tier); err != nil {
			return err
		}
		s.log.Info("discount tier deactivated", zap.String("discount_tier_id", tier.ID.String()))
		return nil
	})
}

func (s *Service) ensureUniqueThreshold(ctx context.Context, db *gorm.DB, tier *discountdomain.Tier) error {
	count, err := s.repo.CountActiveWithThreshold(ctx, db, tier.Audience, tier.Threshold, tier.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return discountdomain.ErrDuplicateThreshold
	}
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, discountdomain.ErrInvalidID
	}
	return id, nil
}

func toResponse(t *discountdomain.Tier) discountdomain.Response {
	return discountdomain.Response{
		ID:        t.ID.String(),
		Audience:  t.Audience,
		Rate:      t.Rate,
		Threshold: t.Threshold,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
