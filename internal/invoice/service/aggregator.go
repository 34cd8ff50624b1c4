package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/bwmarrin/snowflake"
	notedomain "github.com/smallbiznis/salesinvoice/internal/deliverynote/domain"
	invoicedomain "github.com/smallbiznis/salesinvoice/internal/invoice/domain"
	"gorm.io/gorm"
)

// Aggregator sums a sales person's delivery lines per product over a period.
type Aggregator struct {
	notes notedomain.Repository
}

func NewAggregator(notes notedomain.Repository) *Aggregator {
	return &Aggregator{notes: notes}
}

func (a *Aggregator) Aggregate(ctx context.Context, db *gorm.DB, salesPersonID snowflake.ID, period invoicedomain.Period) (*invoicedomain.Aggregation, error) {
	notes, err := a.notes.ListForPeriod(ctx, db, salesPersonID, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, invoicedomain.ErrNoDeliveryNotes
	}

	noteIDs := make([]snowflake.ID, 0, len(notes))
	for _, n := range notes {
		noteIDs = append(noteIDs, n.ID)
	}
	items, err := a.notes.ListLineItems(ctx, db, noteIDs)
	if err != nil {
		return nil, err
	}
	return aggregate(items)
}

func aggregate(items []notedomain.LineItem) (*invoicedomain.Aggregation, error) {
	rows := make(map[snowflake.ID]*invoicedomain.AggregateRow)
	for _, item := range items {
		if item.Quantity < 0 || item.UnitPrice < 0 {
			return nil, invoicedomain.ErrNegativeAmount
		}
		row, ok := rows[item.ProductID]
		if !ok {
			rows[item.ProductID] = &invoicedomain.AggregateRow{
				ProductID:         item.ProductID,
				TotalQuantity:     item.Quantity,
				UnitPrice:         item.UnitPrice,
				QuotaTarget:       item.QuotaTarget,
				DiscountExclusion: item.DiscountExclusion,
			}
			continue
		}
		if row.UnitPrice != item.UnitPrice {
			return nil, fmt.Errorf("%w: product %s has %d and %d",
				invoicedomain.ErrNonUniformUnitPrice, item.ProductID, row.UnitPrice, item.UnitPrice)
		}
		row.TotalQuantity += item.Quantity
	}

	out := &invoicedomain.Aggregation{Rows: make([]invoicedomain.AggregateRow, 0, len(rows))}
	for _, row := range rows {
		row.Amount = row.TotalQuantity * row.UnitPrice
		if row.QuotaTarget {
			out.QuotaSubtotal += row.Amount
		} else {
			out.NonQuotaSubtotal += row.Amount
		}
		out.Rows = append(out.Rows, *row)
	}
	sort.Slice(out.Rows, func(i, j int) bool {
		return out.Rows[i].ProductID < out.Rows[j].ProductID
	})
	return out, nil
}
