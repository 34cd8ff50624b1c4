package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	notedomain "github.com/smallbiznis/salesinvoice/internal/deliverynote/domain"
	masterdomain "github.com/smallbiznis/salesinvoice/internal/masterdata/domain"
	"github.com/smallbiznis/salesinvoice/internal/observability/metrics"
	taxdomain "github.com/smallbiznis/salesinvoice/internal/tax/domain"
	taxservice "github.com/smallbiznis/salesinvoice/internal/tax/service"
	dbpkg "github.com/smallbiznis/salesinvoice/pkg/db"
	"github.com/smallbiznis/salesinvoice/pkg/db/pagination"
	"github.com/smallbiznis/salesinvoice/pkg/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        notedomain.Repository
	MasterRepo  masterdomain.Repository
	TaxResolver taxdomain.TaxResolver
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        notedomain.Repository
	masterRepo  masterdomain.Repository
	taxResolver taxdomain.TaxResolver
	metrics     *metrics.Metrics
	validate    *validator.Validate
}

func New(p Params) notedomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("deliverynote.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		masterRepo:  p.MasterRepo,
		taxResolver: p.TaxResolver,
		metrics:     p.Metrics,
		validate:    validation.New(),
	}
}

func (s *Service) Create(ctx context.Context, req notedomain.CreateRequest) (*notedomain.Response, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	salesPersonID, err := parseID(req.SalesPersonID)
	if err != nil {
		return nil, err
	}
	deliveryDate, err := parseDate(req.DeliveryDate)
	if err != nil {
		return nil, err
	}
	billingDate, err := parseDate(req.BillingDate)
	if err != nil {
		return nil, err
	}
	recognition, err := recognitionData(req.ImageRecognitionData)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note := &notedomain.Note{
		ID:                   s.genID.Generate(),
		SalesPersonID:        salesPersonID,
		DeliveryNoteNumber:   strings.TrimSpace(req.DeliveryNoteNumber),
		DeliveryDate:         deliveryDate,
		BillingDate:          billingDate,
		Remarks:              req.Remarks,
		FilePath:             req.FilePath,
		ImageRecognitionData: recognition,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	var lines []notedomain.Line
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureSalesPerson(ctx, tx, note.SalesPersonID); err != nil {
			return err
		}
		rate, err := s.resolveTaxRate(ctx, tx, req.TaxRateID)
		if err != nil {
			return err
		}
		note.TaxRateID = rate.ID

		if err := s.ensureNumberFree(ctx, tx, note.DeliveryNoteNumber, note.ID); err != nil {
			return err
		}

		var items []notedomain.LineItem
		lines, items, err = s.buildLines(ctx, tx, note.ID, req.Lines, now)
		if err != nil {
			return err
		}
		applyTotals(note, items, rate.Fraction())

		if err := s.repo.Insert(ctx, tx, note); err != nil {
			return err
		}
		return s.repo.InsertLines(ctx, tx, lines)
	})
	if dbpkg.IsDuplicateKeyErr(err) {
		return nil, notedomain.ErrDuplicateNoteNumber
	}
	if err != nil {
		return nil, err
	}

	s.metrics.RecordDeliveryNote(ctx, "create")
	s.log.Info("delivery note created",
		zap.String("delivery_note_id", note.ID.String()),
		zap.String("sales_person_id", note.SalesPersonID.String()),
		zap.Int("lines", len(lines)),
	)
	resp := toResponse(note, lines)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req notedomain.UpdateRequest) (*notedomain.Response, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	noteID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var (
		note  *notedomain.Note
		lines []notedomain.Line
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		note, err = s.repo.FindByID(ctx, tx, noteID)
		if err != nil {
			return err
		}
		if note == nil {
			return notedomain.ErrNotFound
		}

		if req.SalesPersonID != nil {
			spID, err := parseID(*req.SalesPersonID)
			if err != nil {
				return err
			}
			if err := s.ensureSalesPerson(ctx, tx, spID); err != nil {
				return err
			}
			note.SalesPersonID = spID
		}
		if req.DeliveryNoteNumber != nil {
			number := strings.TrimSpace(*req.DeliveryNoteNumber)
			if err := s.ensureNumberFree(ctx, tx, number, note.ID); err != nil {
				return err
			}
			note.DeliveryNoteNumber = number
		}
		if req.DeliveryDate != nil {
			if note.DeliveryDate, err = parseDate(*req.DeliveryDate); err != nil {
				return err
			}
		}
		if req.BillingDate != nil {
			if note.BillingDate, err = parseDate(*req.BillingDate); err != nil {
				return err
			}
		}
		if req.Remarks != nil {
			note.Remarks = req.Remarks
		}
		if req.FilePath != nil {
			note.FilePath = req.FilePath
		}
		if len(req.ImageRecognitionData) > 0 {
			if note.ImageRecognitionData, err = recognitionData(req.ImageRecognitionData); err != nil {
				return err
			}
		}

		taxRateID := note.TaxRateID.String()
		if req.TaxRateID != nil {
			taxRateID = *req.TaxRateID
		}
		rate, err := s.resolveTaxRate(ctx, tx, taxRateID)
		if err != nil {
			return err
		}
		note.TaxRateID = rate.ID

		now := time.Now().UTC()
		var items []notedomain.LineItem
		if len(req.Lines) > 0 {
			lines, items, err = s.buildLines(ctx, tx, note.ID, req.Lines, now)
			if err != nil {
				return err
			}
			if err := s.repo.DeleteLines(ctx, tx, note.ID); err != nil {
				return err
			}
			if err := s.repo.InsertLines(ctx, tx, lines); err != nil {
				return err
			}
		} else {
			if lines, err = s.repo.ListLines(ctx, tx, []snowflake.ID{note.ID}); err != nil {
				return err
			}
			if items, err = s.repo.ListLineItems(ctx, tx, []snowflake.ID{note.ID}); err != nil {
				return err
			}
		}

		applyTotals(note, items, rate.Fraction())
		note.UpdatedAt = now
		return s.repo.Update(ctx, tx, note)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordDeliveryNote(ctx, "update")
	resp := toResponse(note, lines)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*notedomain.Response, error) {
	noteID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	note, err := s.repo.FindByID(ctx, s.db, noteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, notedomain.ErrNotFound
	}
	lines, err := s.repo.ListLines(ctx, s.db, []snowflake.ID{note.ID})
	if err != nil {
		return nil, err
	}
	resp := toResponse(note, lines)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req notedomain.ListRequest) (*notedomain.ListResponse, error) {
	filter := notedomain.ListFilter{Limit: req.Limit()}
	if v := strings.TrimSpace(req.SalesPersonID); v != "" {
		id, err := parseID(v)
		if err != nil {
			return nil, err
		}
		filter.SalesPersonID = id
	}
	if v := strings.TrimSpace(req.From); v != "" {
		from, err := parseDate(v)
		if err != nil {
			return nil, err
		}
		filter.From = &from
	}
	if v := strings.TrimSpace(req.To); v != "" {
		to, err := parseDate(v)
		if err != nil {
			return nil, err
		}
		filter.To = &to
	}
	cursor, err := pagination.DecodeCursor(req.PageToken)
	if err != nil {
		return nil, err
	}
	filter.Cursor = cursor

	notes, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	notes, pageInfo, err := pagination.BuildPageInfo(notes, filter.Limit, func(n notedomain.Note) pagination.Cursor {
		return pagination.Cursor{ID: n.ID.String(), SortAt: n.DeliveryDate}
	})
	if err != nil {
		return nil, err
	}

	ids := make([]snowflake.ID, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.ID)
	}
	lines, err := s.repo.ListLines(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	byNote := make(map[snowflake.ID][]notedomain.Line, len(notes))
	for _, l := range lines {
		byNote[l.DeliveryNoteID] = append(byNote[l.DeliveryNoteID], l)
	}

	items := make([]notedomain.Response, 0, len(notes))
	for i := range notes {
		items = append(items, toResponse(&notes[i], byNote[notes[i].ID]))
	}
	return &notedomain.ListResponse{Items: items, PageInfo: pageInfo}, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	noteID, err := parseID(id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		note, err := s.repo.FindByID(ctx, tx, noteID)
		if err != nil {
			return err
		}
		if note == nil {
			return notedomain.ErrNotFound
		}
		if err := s.repo.DeleteLines(ctx, tx, noteID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, noteID)
	})
	if err != nil {
		return err
	}

	s.metrics.RecordDeliveryNote(ctx, "delete")
	s.log.Info("delivery note deleted", zap.String("delivery_note_id", noteID.String()))
	return nil
}

func (s *Service) ensureSalesPerson(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	sp, err := s.masterRepo.FindSalesPerson(ctx, db, id)
	if err != nil {
		return err
	}
	if sp == nil {
		return notedomain.ErrUnknownSalesPerson
	}
	return nil
}

func (s *Service) ensureNumberFree(ctx context.Context, db *gorm.DB, number string, self snowflake.ID) error {
	taken, err := s.repo.NumberTaken(ctx, db, number, self)
	if err != nil {
		return err
	}
	if taken {
		return notedomain.ErrDuplicateNoteNumber
	}
	return nil
}

// resolveTaxRate falls back to the active rate when no id is given.
func (s *Service) resolveTaxRate(ctx context.Context, db *gorm.DB, id string) (*taxdomain.TaxRate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return s.taxResolver.ActiveRate(ctx, db)
	}
	rateID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	rate, err := s.taxResolver.RateByID(ctx, db, rateID)
	if errors.Is(err, taxdomain.ErrNotFound) {
		return nil, notedomain.ErrUnknownTaxRate
	}
	return rate, err
}

// buildLines validates products against the active catalogue and prices each line.
func (s *Service) buildLines(ctx context.Context, db *gorm.DB, noteID snowflake.ID, inputs []notedomain.LineInput, now time.Time) ([]notedomain.Line, []notedomain.LineItem, error) {
	if len(inputs) == 0 {
		return nil, nil, notedomain.ErrEmptyLines
	}

	productIDs := make([]snowflake.ID, 0, len(inputs))
	parsed := make([]snowflake.ID, len(inputs))
	for i, in := range inputs {
		id, err := parseID(in.ProductID)
		if err != nil {
			return nil, nil, err
		}
		parsed[i] = id
		productIDs = append(productIDs, id)
	}
	products, err := s.masterRepo.FindProductsByIDs(ctx, db, productIDs)
	if err != nil {
		return nil, nil, err
	}

	lines := make([]notedomain.Line, 0, len(inputs))
	items := make([]notedomain.LineItem, 0, len(inputs))
	for i, in := range inputs {
		product, ok := products[parsed[i]]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", notedomain.ErrUnknownProduct, parsed[i])
		}
		if in.Quantity < 0 {
			return nil, nil, notedomain.ErrInvalidQuantity
		}
		unitPrice := product.Price
		if in.UnitPrice != nil {
			unitPrice = *in.UnitPrice
		}
		if unitPrice < 0 {
			return nil, nil, notedomain.ErrInvalidUnitPrice
		}

		line := notedomain.Line{
			ID:             s.genID.Generate(),
			DeliveryNoteID: noteID,
			ProductID:      product.ID,
			Quantity:       in.Quantity,
			UnitPrice:      unitPrice,
			Amount:         in.Quantity * unitPrice,
			Remarks:        in.Remarks,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		lines = append(lines, line)
		items = append(items, notedomain.LineItem{
			DeliveryNoteID:    noteID,
			ProductID:         product.ID,
			Quantity:          line.Quantity,
			UnitPrice:         line.UnitPrice,
			Amount:            line.Amount,
			QuotaTarget:       product.QuotaTarget,
			DiscountExclusion: product.DiscountExclusion,
		})
	}
	return lines, items, nil
}

// applyTotals derives the note's bucket and tax columns from its lines.
func applyTotals(note *notedomain.Note, items []notedomain.LineItem, taxFraction decimal.Decimal) {
	var quota, nonQuota int64
	for _, item := range items {
		if item.QuotaTarget {
			quota += item.Amount
		} else {
			nonQuota += item.Amount
		}
	}
	note.QuotaAmount = quota
	note.NonQuotaAmount = nonQuota
	note.TotalAmountExTax = quota + nonQuota
	note.TaxAmount = taxservice.ComputeTaxExclusive(note.TotalAmountExTax, taxFraction)
	note.TotalAmountIncTax = note.TotalAmountExTax + note.TaxAmount
}

func recognitionData(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, notedomain.ErrInvalidRecognition
	}
	return datatypes.JSON(raw), nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, notedomain.ErrInvalidID
	}
	return id, nil
}

func parseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(notedomain.DateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, notedomain.ErrInvalidDate
	}
	return t, nil
}

func toResponse(note *notedomain.Note, lines []notedomain.Line) notedomain.Response {
	out := make([]notedomain.LineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, notedomain.LineResponse{
			ID:        l.ID.String(),
			ProductID: l.ProductID.String(),
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount,
			Remarks:   l.Remarks,
		})
	}
	return notedomain.Response{
		ID:                   note.ID.String(),
		SalesPersonID:        note.SalesPersonID.String(),
		TaxRateID:            note.TaxRateID.String(),
		DeliveryNoteNumber:   note.DeliveryNoteNumber,
		DeliveryDate:         note.DeliveryDate.Format(notedomain.DateLayout),
		BillingDate:          note.BillingDate.Format(notedomain.DateLayout),
		QuotaAmount:          note.QuotaAmount,
		NonQuotaAmount:       note.NonQuotaAmount,
		TotalAmountExTax:     note.TotalAmountExTax,
		TaxAmount:            note.TaxAmount,
		TotalAmountIncTax:    note.TotalAmountIncTax,
		Remarks:              note.Remarks,
		FilePath:             note.FilePath,
		ImageRecognitionData: json.RawMessage(note.ImageRecognitionData),
		Lines:                out,
		CreatedAt:            note.CreatedAt,
		UpdatedAt:            note.UpdatedAt,
	}
}
