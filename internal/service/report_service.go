package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tkamphefner/Inventory/internal/audit"
	"github.com/tkamphefner/Inventory/internal/dto"
	"github.com/tkamphefner/Inventory/internal/ident"
	"github.com/tkamphefner/Inventory/internal/model"
	"github.com/tkamphefner/Inventory/internal/repository"
	"github.com/tkamphefner/Inventory/internal/serviceerr"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ReportService persists report definitions and computes results on demand.
// Results are never stored; Run re-reads live data every time.
type ReportService interface {
	Create(ctx context.Context, req dto.CreateReportRequest, actor Actor) (*dto.ReportResponse, error)
	Get(ctx context.Context, id string) (*dto.ReportResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.ReportResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateReportRequest, actor Actor) (*dto.ReportResponse, error)
	Deactivate(ctx context.Context, id string, actor Actor) error
	Run(ctx context.Context, id string) (*dto.ReportResult, error)

	// RunDue executes every active scheduled report whose interval has
	// elapsed since last_run. Called by the background scheduler.
	RunDue(ctx context.Context, now time.Time) (int, error)
}

type reportService struct {
	repo      repository.ReportRepository
	inventory repository.InventoryRepository
	catRepo   repository.CategoryRepository
	auditor   audit.Recorder
}

func NewReportService(
	repo repository.ReportRepository,
	inventory repository.InventoryRepository,
	catRepo repository.CategoryRepository,
	auditor audit.Recorder,
) ReportService {
	return &reportService{repo: repo, inventory: inventory, catRepo: catRepo, auditor: auditor}
}

// ── Definition CRUD ──────────────────────────────────────────────────────────

func (s *reportService) Create(ctx context.Context, req dto.CreateReportRequest, actor Actor) (*dto.ReportResponse, error) {
	reportType := model.ReportType(req.Type)
	if !reportType.Valid() {
		return nil, fmt.Errorf("unknown report type %q: %w", req.Type, serviceerr.ErrInvalidInput)
	}
	params := req.Parameters
	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	} else if !json.Valid(params) {
		return nil, fmt.Errorf("parameters must be valid JSON: %w", serviceerr.ErrInvalidInput)
	}
	if req.Schedule != nil && *req.Schedule != "" {
		if _, err := time.ParseDuration(*req.Schedule); err != nil {
			return nil, fmt.Errorf("schedule %q is not a valid interval: %w", *req.Schedule, serviceerr.ErrInvalidInput)
		}
	}

	report := &model.Report{
		ID:         ident.New(ident.PrefixReport),
		Name:       req.Name,
		Type:       reportType,
		Parameters: params,
		CreatedBy:  actor.ID,
		Schedule:   req.Schedule,
		IsActive:   true,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, actor.ID, "report.create", "report", report.ID, map[string]interface{}{
		"type": req.Type,
	}, actor.Origin)

	return reportToResponse(report), nil
}

func (s *reportService) Get(ctx context.Context, id string) (*dto.ReportResponse, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "report", id)
	}
	return reportToResponse(report), nil
}

func (s *reportService) List(ctx context.Context, includeInactive bool) ([]dto.ReportResponse, error) {
	reports, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ReportResponse, len(reports))
	for i := range reports {
		resp[i] = *reportToResponse(&reports[i])
	}
	return resp, nil
}

func (s *reportService) Update(ctx context.Context, id string, req dto.UpdateReportRequest, actor Actor) (*dto.ReportResponse, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "report", id)
	}
	if req.Name != nil {
		report.Name = *req.Name
	}
	if len(req.Parameters) > 0 {
		if !json.Valid(req.Parameters) {
			return nil, fmt.Errorf("parameters must be valid JSON: %w", serviceerr.ErrInvalidInput)
		}
		report.Parameters = req.Parameters
	}
	if req.Schedule != nil {
		if *req.Schedule != "" {
			if _, err := time.ParseDuration(*req.Schedule); err != nil {
				return nil, fmt.Errorf("schedule %q is not a valid interval: %w", *req.Schedule, serviceerr.ErrInvalidInput)
			}
		}
		report.Schedule = req.Schedule
	}
	if req.IsActive != nil {
		report.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, report); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, actor.ID, "report.update", "report", id, nil, actor.Origin)
	return reportToResponse(report), nil
}

func (s *reportService) Deactivate(ctx context.Context, id string, actor Actor) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return asNotFound(err, "report", id)
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, actor.ID, "report.deactivate", "report", id, nil, actor.Origin)
	return nil
}

// ── Execution ────────────────────────────────────────────────────────────────

func (s *reportService) Run(ctx context.Context, id string) (*dto.ReportResult, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "report", id)
	}

	var params dto.ReportParameters
	if len(report.Parameters) > 0 {
		if err := json.Unmarshal(report.Parameters, &params); err != nil {
			return nil, fmt.Errorf("report %s has malformed parameters: %w", id, serviceerr.ErrInvalidInput)
		}
	}

	now := time.Now().UTC()
	result := &dto.ReportResult{
		ReportID:    report.ID,
		Type:        string(report.Type),
		GeneratedAt: formatTime(now),
	}

	switch report.Type {
	case model.ReportValuation:
		valuation, err := s.runValuation(ctx, params)
		if err != nil {
			return nil, err
		}
		result.Valuation = valuation
	case model.ReportLowStock:
		lowStock, err := s.runLowStock(ctx, params)
		if err != nil {
			return nil, err
		}
		result.LowStock = lowStock
	case model.ReportTransactionHistory:
		history, err := s.runHistory(ctx, params)
		if err != nil {
			return nil, err
		}
		result.History = history
	default:
		return nil, fmt.Errorf("report type %q has no executor: %w", report.Type, serviceerr.ErrInvalidInput)
	}

	// A failed stamp makes the scheduler re-run this report every tick;
	// the result itself is still good.
	if err := s.repo.StampLastRun(ctx, report.ID, now); err != nil {
		log.Warn().Err(err).Str("report_id", report.ID).Msg("report: last_run stamp failed")
	}
	return result, nil
}

func (s *reportService) RunDue(ctx context.Context, now time.Time) (int, error) {
	reports, err := s.repo.ListScheduled(ctx)
	if err != nil {
		return 0, err
	}

	ran := 0
	for i := range reports {
		report := &reports[i]
		interval, err := time.ParseDuration(*report.Schedule)
		if err != nil || interval <= 0 {
			continue
		}
		if report.LastRunAt != nil && now.Sub(*report.LastRunAt) < interval {
			continue
		}
		if _, err := s.Run(ctx, report.ID); err != nil {
			return ran, fmt.Errorf("scheduled run of %s: %w", report.ID, err)
		}
		ran++
	}
	return ran, nil
}

func (s *reportService) runValuation(ctx context.Context, params dto.ReportParameters) (*dto.ValuationResult, error) {
	rows, err := s.filteredLevels(ctx, params)
	if err != nil {
		return nil, err
	}

	result := &dto.ValuationResult{TotalValue: decimal.Zero, TotalCost: decimal.Zero}
	type bucket struct {
		name     string
		quantity int
		value    decimal.Decimal
		cost     decimal.Decimal
	}
	buckets := make(map[string]*bucket)
	var order []string

	for i := range rows {
		row := &rows[i]
		qty := decimal.NewFromInt(int64(row.Quantity))
		value := row.UnitPrice.Mul(qty)
		cost := row.UnitCost.Mul(qty)

		result.TotalQuantity += row.Quantity
		result.TotalValue = result.TotalValue.Add(value)
		result.TotalCost = result.TotalCost.Add(cost)

		catID, catName := "", "uncategorized"
		if row.CategoryID != nil {
			catID = *row.CategoryID
		}
		if row.CategoryName != nil {
			catName = *row.CategoryName
		}
		b, ok := buckets[catID]
		if !ok {
			b = &bucket{name: catName, value: decimal.Zero, cost: decimal.Zero}
			buckets[catID] = b
			order = append(order, catID)
		}
		b.quantity += row.Quantity
		b.value = b.value.Add(value)
		b.cost = b.cost.Add(cost)
	}

	for _, id := range order {
		b := buckets[id]
		result.Categories = append(result.Categories, dto.CategoryValuation{
			CategoryID:   id,
			CategoryName: b.name,
			Quantity:     b.quantity,
			Value:        b.value,
			Cost:         b.cost,
		})
	}
	return result, nil
}

func (s *reportService) runLowStock(ctx context.Context, params dto.ReportParameters) ([]dto.LevelResponse, error) {
	q, err := s.levelQuery(ctx, params)
	if err != nil {
		return nil, err
	}
	q.LowStockOnly = true
	q.Page = 1
	q.Limit = 1000

	rows, _, err := s.inventory.ListLevels(ctx, q)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.LevelResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, levelRowToResponse(&rows[i]))
	}
	return resp, nil
}

func (s *reportService) runHistory(ctx context.Context, params dto.ReportParameters) ([]dto.TransactionResponse, error) {
	filter := dto.TransactionFilter{
		LocationID: params.LocationID,
		From:       params.From,
		To:         params.To,
		Page:       1,
		Limit:      200,
	}
	txs, _, err := s.inventory.ListTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		resp = append(resp, TransactionToResponse(&txs[i]))
	}
	return resp, nil
}

// filteredLevels loads level rows narrowed by the parameter bag.
func (s *reportService) filteredLevels(ctx context.Context, params dto.ReportParameters) ([]repository.LevelRow, error) {
	if params.LocationID == "" && params.CategoryID == "" {
		return s.inventory.ListAllLevels(ctx)
	}
	q, err := s.levelQuery(ctx, params)
	if err != nil {
		return nil, err
	}
	q.Page = 1
	q.Limit = 10000
	rows, _, err := s.inventory.ListLevels(ctx, q)
	return rows, err
}

func (s *reportService) levelQuery(ctx context.Context, params dto.ReportParameters) (repository.LevelQuery, error) {
	q := repository.LevelQuery{LocationID: params.LocationID, Page: 1, Limit: 1000}
	if params.CategoryID != "" {
		children, err := s.catRepo.ChildIDs(ctx, params.CategoryID)
		if err != nil {
			return q, err
		}
		q.CategoryIDs = append([]string{params.CategoryID}, children...)
	}
	return q, nil
}

func reportToResponse(r *model.Report) *dto.ReportResponse {
	return &dto.ReportResponse{
		ID:         r.ID,
		Name:       r.Name,
		Type:       string(r.Type),
		Parameters: r.Parameters,
		CreatedBy:  r.CreatedBy,
		Schedule:   r.Schedule,
		LastRunAt:  formatTimePtr(r.LastRunAt),
		IsActive:   r.IsActive,
		CreatedAt:  formatTime(r.CreatedAt),
	}
}
