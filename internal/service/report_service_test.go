package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/tkamphefner/Inventory/internal/dto"
	"github.com/tkamphefner/Inventory/internal/model"
	"github.com/tkamphefner/Inventory/internal/repository"
	"github.com/tkamphefner/Inventory/internal/serviceerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repFixture struct {
	svc     ReportService
	reports *reportRepoStub
	inv     *inventoryRepoStub
	cats    *categoryRepoStub
	audit   *auditStub
}

func newRepFixture() *repFixture {
	f := &repFixture{
		reports: newReportRepoStub(),
		inv:     newInventoryRepoStub(),
		cats:    newCategoryRepoStub(),
		audit:   &auditStub{},
	}
	f.svc = NewReportService(f.reports, f.inv, f.cats, f.audit)
	return f
}

func (f *repFixture) seedLevels() {
	wineCat, wine := "cat-wine", "Wine"
	f.inv.levels = []repository.LevelRow{
		{
			ProductID: "prod-a", ProductName: "House Red",
			CategoryID: &wineCat, CategoryName: &wine,
			LocationID: "loc-1", LocationName: "Cellar",
			Quantity: 10, MinimumStock: 4,
			UnitPrice: mustDecimal("10.00"), UnitCost: mustDecimal("6.00"),
		},
		{
			ProductID: "prod-b", ProductName: "Well Gin",
			LocationID: "loc-2", LocationName: "Bar",
			Quantity: 2, MinimumStock: 5,
			UnitPrice: mustDecimal("20.00"), UnitCost: mustDecimal("12.00"),
		},
	}
}

func TestCreateReportValidation(t *testing.T) {
	f := newRepFixture()

	_, err := f.svc.Create(context.Background(), dto.CreateReportRequest{
		Name: "Bad", Type: "market_share",
	}, testActor())
	assert.ErrorIs(t, err, serviceerr.ErrInvalidInput)

	_, err = f.svc.Create(context.Background(), dto.CreateReportRequest{
		Name: "Bad Schedule", Type: "valuation", Schedule: strPtr("every tuesday"),
	}, testActor())
	assert.ErrorIs(t, err, serviceerr.ErrInvalidInput)

	resp, err := f.svc.Create(context.Background(), dto.CreateReportRequest{
		Name: "Nightly Valuation", Type: "valuation", Schedule: strPtr("24h"),
	}, testActor())
	require.NoError(t, err)
	assert.True(t, resp.IsActive)
	assert.JSONEq(t, `{}`, string(resp.Parameters))
}

func TestRunValuationReport(t *testing.T) {
	f := newRepFixture()
	f.seedLevels()

	created, err := f.svc.Create(context.Background(), dto.CreateReportRequest{
		Name: "Full Valuation", Type: "valuation",
	}, testActor())
	require.NoError(t, err)

	result, err := f.svc.Run(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "valuation", result.Type)
	require.NotNil(t, result.Valuation)
	assert.Equal(t, 12, result.Valuation.TotalQuantity)
	assert.True(t, result.Valuation.TotalValue.Equal(mustDecimal("140.00")), "got %s", result.Valuation.TotalValue)
	assert.True(t, result.Valuation.TotalCost.Equal(mustDecimal("84.00")), "got %s", result.Valuation.TotalCost)
	require.Len(t, result.Valuation.Categories, 2)
	assert.Equal(t, "Wine", result.Valuation.Categories[0].CategoryName)
	assert.Equal(t, "uncategorized", result.Valuation.Categories[1].CategoryName)

	// Run stamps last_run.
	stored, err := f.svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastRunAt)
}

func TestRunLowStockReport(t *testing.T) {
	f := newRepFixture()
	f.seedLevels()

	created, err := f.svc.Create(context.Background(), dto.CreateReportRequest{
		Name: "Reorder List", Type: "low_stock",
	}, testActor())
	require.NoError(t, err)

	result, err := f.svc.Run(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, result.LowStock, 1)
	assert.Equal(t, "Well Gin", result.LowStock[0].ProductName)
	assert.True(t, result.LowStock[0].LowStock)
}

func TestRunTransactionHistoryReport(t *testing.T) {
	f := newRepFixture()
	loc := "loc-1"
	f.inv.transactions = []model.InventoryTransaction{
		{ID: "trx-1", Type: model.TransactionCheckIn, ProductID: "prod-a",
			DestinationLocationID: &loc, Quantity: 5, CreatedBy: "usr-test",
			CreatedAt: time.Now().UTC()},
	}

	created, err := f.svc.Create(context.Background(), dto.CreateReportRequest{
		Name: "Movements", Type: "transaction_history",
	}, testActor())
	require.NoError(t, err)

	result, err := f.svc.Run(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, result.History, 1)
	assert.Equal(t, "trx-1", result.History[0].ID)
}

func TestRunReportMalformedParameters(t *testing.T) {
	f := newRepFixture()
	rep := &model.Report{
		ID: "rep-bad", Name: "Broken", Type: model.ReportValuation,
		Parameters: json.RawMessage(`{"location_id": 7}`), IsActive: true,
	}
	require.NoError(t, f.reports.Create(context.Background(), rep))

	_, err := f.svc.Run(context.Background(), "rep-bad")
	assert.ErrorIs(t, err, serviceerr.ErrInvalidInput)
}

func TestRunDueHonoursInterval(t *testing.T) {
	f := newRepFixture()
	f.seedLevels()
	now := time.Now().UTC()

	due, err := f.svc.Create(context.Background(), dto.CreateReportRequest{
		Name: "Hourly", Type: "valuation", Schedule: strPtr("1h"),
	}, testActor())
	require.NoError(t, err)

	fresh, err := f.svc.Create(context.Background(), dto.CreateReportRequest{
		Name: "Daily", Type: "valuation", Schedule: strPtr("24h"),
	}, testActor())
	require.NoError(t, err)
	recent := now.Add(-10 * time.Minute)
	require.NoError(t, f.reports.StampLastRun(context.Background(), fresh.ID, recent))

	ran, err := f.svc.RunDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, ran, "only the never-run hourly report is due")

	stored, err := f.svc.Get(context.Background(), due.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastRunAt)
}

func TestDeactivateReportHidesFromDefaultList(t *testing.T) {
	f := newRepFixture()
	created, err := f.svc.Create(context.Background(), dto.CreateReportRequest{
		Name: "Old Report", Type: "valuation",
	}, testActor())
	require.NoError(t, err)

	require.NoError(t, f.svc.Deactivate(context.Background(), created.ID, testActor()))

	active, err := f.svc.List(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := f.svc.List(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
