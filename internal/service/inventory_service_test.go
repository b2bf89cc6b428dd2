package service

import (
	"context"
	"testing"

	"github.com/tkamphefner/Inventory/internal/dto"
	"github.com/tkamphefner/Inventory/internal/model"
	"github.com/tkamphefner/Inventory/internal/repository"
	"github.com/tkamphefner/Inventory/internal/serviceerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invFixture struct {
	svc       InventoryService
	inv       *inventoryRepoStub
	products  *productRepoStub
	locations *locationRepoStub
	cats      *categoryRepoStub
	audit     *auditStub
}

func newInvFixture() *invFixture {
	f := &invFixture{
		inv:       newInventoryRepoStub(),
		products:  newProductRepoStub(),
		locations: newLocationRepoStub(),
		cats:      newCategoryRepoStub(),
		audit:     &auditStub{},
	}
	f.svc = NewInventoryService(f.inv, f.products, f.locations, f.cats, f.audit)
	return f
}

func testActor() Actor { return Actor{ID: "usr-test", Origin: "127.0.0.1"} }

func setQuantityReq(productID, locationID string, qty int) dto.SetQuantityRequest {
	return dto.SetQuantityRequest{ProductID: productID, LocationID: locationID, Quantity: qty}
}

func levelFilterForCategory(categoryID string) dto.LevelFilter {
	return dto.LevelFilter{CategoryID: categoryID, Page: 1, Limit: 50}
}

func TestRecordTransactionCheckIn(t *testing.T) {
	f := newInvFixture()
	product := f.products.add("Cabernet Sauvignon", "18.50", "11.00", 6)
	loc := f.locations.add("Main Cellar", model.LocationMainStorage)

	trx, err := f.svc.RecordTransaction(context.Background(), MovementInput{
		Type:                  model.TransactionCheckIn,
		ProductID:             product.ID,
		DestinationLocationID: &loc.ID,
		Quantity:              12,
		Actor:                 testActor(),
	})
	require.NoError(t, err)
	assert.Equal(t, model.TransactionCheckIn, trx.Type)
	assert.Equal(t, 12, trx.Quantity)
	assert.Equal(t, "usr-test", trx.CreatedBy)

	assert.Equal(t, 12, f.inv.quantityAt(product.ID, loc.ID))
	assert.Equal(t, f.inv.quantityAt(product.ID, loc.ID), f.inv.ledgerSum(product.ID, loc.ID))
	assert.Contains(t, f.audit.actions(), "inventory.check_in")
}

func TestRecordTransactionRejectsNonPositiveQuantity(t *testing.T) {
	f := newInvFixture()
	product := f.products.add("Gin", "25.00", "15.00", 2)
	loc := f.locations.add("Bar", model.LocationOutlet)

	for _, qty := range []int{0, -5} {
		_, err := f.svc.RecordTransaction(context.Background(), MovementInput{
			Type:                  model.TransactionCheckIn,
			ProductID:             product.ID,
			DestinationLocationID: &loc.ID,
			Quantity:              qty,
			Actor:                 testActor(),
		})
		assert.ErrorIs(t, err, serviceerr.ErrInvalidInput)
	}
	assert.Empty(t, f.inv.transactions, "rejected movements must not reach the ledger")
}

func TestRecordTransactionInsufficientStock(t *testing.T) {
	f := newInvFixture()
	product := f.products.add("Vodka", "20.00", "12.00", 2)
	loc := f.locations.add("Bar", model.LocationOutlet)

	_, err := f.svc.RecordTransaction(context.Background(), MovementInput{
		Type: model.TransactionCheckIn, ProductID: product.ID,
		DestinationLocationID: &loc.ID, Quantity: 10, Actor: testActor(),
	})
	require.NoError(t, err)

	_, err = f.svc.RecordTransaction(context.Background(), MovementInput{
		Type: model.TransactionCheckOut, ProductID: product.ID,
		SourceLocationID: &loc.ID, Quantity: 15, Actor: testActor(),
	})
	assert.ErrorIs(t, err, serviceerr.ErrInsufficientStock)

	// Neither side of the failed movement may have landed.
	assert.Equal(t, 10, f.inv.quantityAt(product.ID, loc.ID))
	assert.Len(t, f.inv.transactions, 1)
}

func TestRecordTransactionCheckOutWithoutRecord(t *testing.T) {
	f := newInvFixture()
	product := f.products.add("Rum", "22.00", "13.00", 2)
	loc := f.locations.add("Bar", model.LocationOutlet)

	_, err := f.svc.RecordTransaction(context.Background(), MovementInput{
		Type: model.TransactionCheckOut, ProductID: product.ID,
		SourceLocationID: &loc.ID, Quantity: 1, Actor: testActor(),
	})
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)
}

func TestRecordTransactionTransfer(t *testing.T) {
	f := newInvFixture()
	product := f.products.add("Whiskey", "45.00", "28.00", 3)
	src := f.locations.add("Warehouse", model.LocationWarehouse)
	dst := f.locations.add("Bar", model.LocationOutlet)

	_, err := f.svc.RecordTransaction(context.Background(), MovementInput{
		Type: model.TransactionCheckIn, ProductID: product.ID,
		DestinationLocationID: &src.ID, Quantity: 20, Actor: testActor(),
	})
	require.NoError(t, err)

	trx, err := f.svc.RecordTransaction(context.Background(), MovementInput{
		Type: model.TransactionTransfer, ProductID: product.ID,
		SourceLocationID: &src.ID, DestinationLocationID: &dst.ID,
		Quantity: 8, Actor: testActor(),
	})
	require.NoError(t, err)
	assert.Equal(t, model.TransactionTransfer, trx.Type)

	assert.Equal(t, 12, f.inv.quantityAt(product.ID, src.ID))
	assert.Equal(t, 8, f.inv.quantityAt(product.ID, dst.ID))
	assert.Equal(t, 12, f.inv.ledgerSum(product.ID, src.ID))
	assert.Equal(t, 8, f.inv.ledgerSum(product.ID, dst.ID))
}

func TestRecordTransactionTransferSameLocation(t *testing.T) {
	f := newInvFixture()
	product := f.products.add("Tequila", "30.00", "18.00", 2)
	loc := f.locations.add("Bar", model.LocationOutlet)

	_, err := f.svc.RecordTransaction(context.Background(), MovementInput{
		Type: model.TransactionTransfer, ProductID: product.ID,
		SourceLocationID: &loc.ID, DestinationLocationID: &loc.ID,
		Quantity: 1, Actor: testActor(),
	})
	assert.ErrorIs(t, err, serviceerr.ErrInvalidInput)
}

func TestRecordTransactionRejectsAdjustmentType(t *testing.T) {
	f := newInvFixture()
	product := f.products.add("Mezcal", "35.00", "21.00", 2)
	loc := f.locations.add("Bar", model.LocationOutlet)

	_, err := f.svc.RecordTransaction(context.Background(), MovementInput{
		Type: model.TransactionAdjustment, ProductID: product.ID,
		DestinationLocationID: &loc.ID, Quantity: 3, Actor: testActor(),
	})
	assert.ErrorIs(t, err, serviceerr.ErrInvalidInput)
}

func TestRecordTransactionInactiveProduct(t *testing.T) {
	f := newInvFixture()
	product := f.products.add("Discontinued Ale", "5.00", "3.00", 0)
	loc := f.locations.add("Bar", model.LocationOutlet)
	require.NoError(t, f.products.SoftDelete(context.Background(), product.ID))

	_, err := f.svc.RecordTransaction(context.Background(), MovementInput{
		Type: model.TransactionCheckIn, ProductID: product.ID,
		DestinationLocationID: &loc.ID, Quantity: 1, Actor: testActor(),
	})
	assert.ErrorIs(t, err, serviceerr.ErrInvalidInput)
}

func TestSetQuantityRecordsDelta(t *testing.T) {
	f := newInvFixture()
	product := f.products.add("Pinot Noir", "24.00", "14.00", 4)
	loc := f.locations.add("Cellar", model.LocationMainStorage)

	_, err := f.svc.RecordTransaction(context.Background(), MovementInput{
		Type: model.TransactionCheckIn, ProductID: product.ID,
		DestinationLocationID: &loc.ID, Quantity: 10, Actor: testActor(),
	})
	require.NoError(t, err)

	// Count found only 7 bottles.
	rec, err := f.svc.SetQuantity(context.Background(), setQuantityReq(product.ID, loc.ID, 7), testActor())
	require.NoError(t, err)
	assert.Equal(t, 7, rec.Quantity)
	require.NotNil(t, rec.LastCountedAt)

	assert.Equal(t, 7, f.inv.quantityAt(product.ID, loc.ID))
	assert.Equal(t, 7, f.inv.ledgerSum(product.ID, loc.ID))

	last := f.inv.transactions[len(f.inv.transactions)-1]
	assert.Equal(t, model.TransactionAdjustment, last.Type)
	assert.Equal(t, 3, last.Quantity)
	require.NotNil(t, last.SourceLocationID)
	assert.Equal(t, loc.ID, *last.SourceLocationID)
}

func TestSetQuantityNoChangeSkipsLedger(t *testing.T) {
	f := newInvFixture()
	product := f.products.add("Riesling", "16.00", "9.00", 4)
	loc := f.locations.add("Cellar", model.LocationMainStorage)

	_, err := f.svc.RecordTransaction(context.Background(), MovementInput{
		Type: model.TransactionCheckIn, ProductID: product.ID,
		DestinationLocationID: &loc.ID, Quantity: 5, Actor: testActor(),
	})
	require.NoError(t, err)
	before := len(f.inv.transactions)

	rec, err := f.svc.SetQuantity(context.Background(), setQuantityReq(product.ID, loc.ID, 5), testActor())
	require.NoError(t, err)
	assert.Equal(t, 5, rec.Quantity)
	assert.NotNil(t, rec.LastCountedAt, "a confirming count still stamps last_counted_at")
	assert.Len(t, f.inv.transactions, before, "no delta, no ledger entry")
}

func TestSetQuantityCreatesRecord(t *testing.T) {
	f := newInvFixture()
	product := f.products.add("Stout", "6.00", "3.50", 12)
	loc := f.locations.add("Outlet", model.LocationOutlet)

	rec, err := f.svc.SetQuantity(context.Background(), setQuantityReq(product.ID, loc.ID, 24), testActor())
	require.NoError(t, err)
	assert.Equal(t, 24, rec.Quantity)
	assert.Equal(t, 24, f.inv.ledgerSum(product.ID, loc.ID))
}

func TestSetQuantityRejectsNegative(t *testing.T) {
	f := newInvFixture()
	product := f.products.add("Lager", "4.00", "2.00", 12)
	loc := f.locations.add("Outlet", model.LocationOutlet)

	_, err := f.svc.SetQuantity(context.Background(), setQuantityReq(product.ID, loc.ID, -1), testActor())
	assert.ErrorIs(t, err, serviceerr.ErrInvalidInput)
}

func TestGetSummaryAggregates(t *testing.T) {
	f := newInvFixture()
	wineCat, liquorCat := "cat-wine", "cat-liquor"
	wine, liquor := "Wine", "Liquor"

	f.inv.levels = []repository.LevelRow{
		{
			ProductID: "prod-a", ProductName: "House Red",
			CategoryID: &wineCat, CategoryName: &wine,
			LocationID: "loc-1", LocationName: "Cellar",
			Quantity: 10, MinimumStock: 4,
			UnitPrice: mustDecimal("10.00"), UnitCost: mustDecimal("7.00"),
		},
		{
			ProductID: "prod-b", ProductName: "Well Gin",
			CategoryID: &liquorCat, CategoryName: &liquor,
			LocationID: "loc-1", LocationName: "Cellar",
			Quantity: 5, MinimumStock: 5,
			UnitPrice: mustDecimal("20.00"), UnitCost: mustDecimal("10.00"),
		},
	}

	summary, err := f.svc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15, summary.TotalQuantity)
	assert.True(t, summary.TotalValue.Equal(mustDecimal("200.00")), "got %s", summary.TotalValue)
	assert.True(t, summary.TotalCost.Equal(mustDecimal("120.00")), "got %s", summary.TotalCost)
	// quantity == minimum counts as low stock
	assert.Equal(t, 1, summary.LowStockCount)
	require.Len(t, summary.Categories, 2)
	assert.Equal(t, "Wine", summary.Categories[0].CategoryName)
	assert.True(t, summary.Categories[0].Value.Equal(mustDecimal("100.00")))
}

func TestGetLevelsExpandsCategoryChildren(t *testing.T) {
	f := newInvFixture()
	parent := &model.Category{ID: "cat-spirits", Name: "Spirits"}
	child := &model.Category{ID: "cat-whiskey", Name: "Whiskey", ParentID: strPtr("cat-spirits")}
	require.NoError(t, f.cats.Create(context.Background(), parent))
	require.NoError(t, f.cats.Create(context.Background(), child))

	childID := child.ID
	f.inv.levels = []repository.LevelRow{
		{ProductID: "prod-w", ProductName: "Bourbon", CategoryID: &childID,
			LocationID: "loc-1", Quantity: 3, MinimumStock: 1,
			UnitPrice: mustDecimal("40.00"), UnitCost: mustDecimal("25.00")},
	}

	resp, err := f.svc.GetLevels(context.Background(), levelFilterForCategory(parent.ID))
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Bourbon", resp.Data[0].ProductName)
	assert.False(t, resp.Data[0].LowStock)
}
