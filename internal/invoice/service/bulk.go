package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	invoicedomain "github.com/smallbiznis/salesinvoice/internal/invoice/domain"
	"go.uber.org/zap"
)

// GenerateBulk bills every selected active sales person for the period that
// closes on req.ClosingDate. Persons are processed one at a time; a failure
// for one person does not stop the run.
func (s *Service) GenerateBulk(ctx context.Context, req invoicedomain.BulkGenerateRequest) (*invoicedomain.BulkResult, error) {
	closing, err := invoicedomain.ParseDate(strings.TrimSpace(req.ClosingDate))
	if err != nil {
		return nil, err
	}
	ids := make([]snowflake.ID, 0, len(req.SalesPersonIDs))
	seen := make(map[snowflake.ID]struct{}, len(req.SalesPersonIDs))
	for _, raw := range req.SalesPersonIDs {
		id, err := parseID(raw)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	period := invoicedomain.ClosingPeriod(closing, s.settings.Get().PeriodStartDay)
	runID := ulid.Make().String()
	log := s.log.With(zap.String("run_id", runID), zap.String("period", period.String()))

	// Without a tax rate every person would fail the same way.
	if _, err := s.tax.ActiveRate(ctx, s.db); err != nil {
		log.Error("bulk generation aborted", zap.Error(err))
		return nil, err
	}

	persons, err := s.master.ListSalesPersons(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	if len(persons) == 0 {
		return nil, invoicedomain.ErrNoSalesPersons
	}
	s.genMetrics.ObserveBatch(len(persons))

	result := &invoicedomain.BulkResult{
		RunID:          runID,
		SkippedPersons: []invoicedomain.PersonOutcome{},
		FailedPersons:  []invoicedomain.PersonOutcome{},
		Period: invoicedomain.PeriodView{
			StartDate: period.Start.Format(invoicedomain.DateLayout),
			EndDate:   period.End.Format(invoicedomain.DateLayout),
		},
	}
	// Requested ids that are unknown or inactive are reported, not dropped.
	found := make(map[snowflake.ID]struct{}, len(persons))
	for _, sp := range persons {
		found[sp.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; ok {
			continue
		}
		log.Warn("sales person not found", zap.String("sales_person_id", id.String()))
		result.FailedPersons = append(result.FailedPersons, invoicedomain.PersonOutcome{
			ID: id.String(), Reason: invoicedomain.ErrSalesPersonNotFound.Error(),
		})
	}

	generated := make([]invoicedomain.Invoice, 0, len(persons))
	for _, sp := range persons {
		invoice, err := s.generate(ctx, sp.ID, period)
		switch {
		case errors.Is(err, invoicedomain.ErrNoDeliveryNotes):
			result.SkippedPersons = append(result.SkippedPersons, invoicedomain.PersonOutcome{
				ID: sp.ID.String(), Name: sp.Name, Reason: err.Error(),
			})
		case err != nil:
			log.Warn("invoice generation failed",
				zap.String("sales_person_id", sp.ID.String()),
				zap.Error(err),
			)
			result.FailedPersons = append(result.FailedPersons, invoicedomain.PersonOutcome{
				ID: sp.ID.String(), Name: sp.Name, Reason: err.Error(),
			})
		default:
			generated = append(generated, *invoice)
		}
	}

	// Generated rows are already committed, so the counts are returned even
	// when the views cannot be built.
	result.Invoices, err = s.buildViews(ctx, s.db, generated)
	if err != nil {
		log.Error("build invoice views failed", zap.Error(err))
		result.Invoices = []invoicedomain.InvoiceView{}
	}
	result.GeneratedCount = len(generated)
	result.SkippedCount = len(result.SkippedPersons)
	result.FailedCount = len(result.FailedPersons)

	log.Info("bulk generation finished",
		zap.Int("generated", result.GeneratedCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("failed", result.FailedCount),
	)
	return result, nil
}
