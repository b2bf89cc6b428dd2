package service

import (
	"context"
	"testing"

	"github.com/tkamphefner/Inventory/internal/dto"
	"github.com/tkamphefner/Inventory/internal/model"
	"github.com/tkamphefner/Inventory/internal/serviceerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catFixture struct {
	svc       CatalogService
	products  *productRepoStub
	cats      *categoryRepoStub
	locations *locationRepoStub
	audit     *auditStub
}

func newCatFixture() *catFixture {
	f := &catFixture{
		products:  newProductRepoStub(),
		cats:      newCategoryRepoStub(),
		locations: newLocationRepoStub(),
		audit:     &auditStub{},
	}
	f.svc = NewCatalogService(f.products, f.cats, f.locations, f.audit)
	return f
}

func TestCreateProduct(t *testing.T) {
	f := newCatFixture()
	resp, err := f.svc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Name:         "Malbec Reserva",
		Barcode:      strPtr("7791234567890"),
		UnitPrice:    mustDecimal("19.99"),
		UnitCost:     mustDecimal("12.50"),
		MinimumStock: 6,
	}, testActor())
	require.NoError(t, err)
	assert.True(t, resp.IsActive)
	assert.Equal(t, 1, resp.CaseSize, "case size floors at 1")
	assert.Contains(t, f.audit.actions(), "product.create")
}

func TestCreateProductDuplicateBarcode(t *testing.T) {
	f := newCatFixture()
	barcode := strPtr("7791111111111")
	_, err := f.svc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Name: "First", Barcode: barcode,
		UnitPrice: mustDecimal("10"), UnitCost: mustDecimal("5"),
	}, testActor())
	require.NoError(t, err)

	_, err = f.svc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Name: "Second", Barcode: barcode,
		UnitPrice: mustDecimal("10"), UnitCost: mustDecimal("5"),
	}, testActor())
	assert.ErrorIs(t, err, serviceerr.ErrDuplicateKey)
}

func TestCreateProductNilBarcodesCoexist(t *testing.T) {
	f := newCatFixture()
	for _, name := range []string{"Loose Grain A", "Loose Grain B"} {
		_, err := f.svc.CreateProduct(context.Background(), dto.CreateProductRequest{
			Name: name, UnitPrice: mustDecimal("2"), UnitCost: mustDecimal("1"),
		}, testActor())
		require.NoError(t, err)
	}
}

func TestUpdateProductBarcodeConflict(t *testing.T) {
	f := newCatFixture()
	first, err := f.svc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Name: "First", Barcode: strPtr("1000000000001"),
		UnitPrice: mustDecimal("10"), UnitCost: mustDecimal("5"),
	}, testActor())
	require.NoError(t, err)
	second, err := f.svc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Name: "Second", Barcode: strPtr("1000000000002"),
		UnitPrice: mustDecimal("10"), UnitCost: mustDecimal("5"),
	}, testActor())
	require.NoError(t, err)

	_, err = f.svc.UpdateProduct(context.Background(), second.ID, dto.UpdateProductRequest{
		Barcode: first.Barcode,
	}, testActor())
	assert.ErrorIs(t, err, serviceerr.ErrDuplicateKey)

	// Re-submitting a product's own barcode is not a conflict.
	_, err = f.svc.UpdateProduct(context.Background(), second.ID, dto.UpdateProductRequest{
		Barcode: second.Barcode,
	}, testActor())
	assert.NoError(t, err)
}

func TestDeactivateProductIsSoftDelete(t *testing.T) {
	f := newCatFixture()
	created, err := f.svc.CreateProduct(context.Background(), dto.CreateProductRequest{
		Name: "Seasonal Cider", UnitPrice: mustDecimal("8"), UnitCost: mustDecimal("4"),
	}, testActor())
	require.NoError(t, err)

	require.NoError(t, f.svc.DeactivateProduct(context.Background(), created.ID, testActor()))

	// Row survives; default listing hides it, active=all shows it.
	got, err := f.svc.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	list, err := f.svc.ListProducts(context.Background(), dto.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Data)

	list, err = f.svc.ListProducts(context.Background(), dto.ProductFilter{Active: "all"})
	require.NoError(t, err)
	assert.Len(t, list.Data, 1)

	require.NoError(t, f.svc.ReactivateProduct(context.Background(), created.ID, testActor()))
	got, err = f.svc.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestCreateCategorySingleLevel(t *testing.T) {
	f := newCatFixture()
	parent, err := f.svc.CreateCategory(context.Background(), dto.CreateCategoryRequest{Name: "Wine"}, testActor())
	require.NoError(t, err)
	child, err := f.svc.CreateCategory(context.Background(), dto.CreateCategoryRequest{
		Name: "Red", ParentID: &parent.ID,
	}, testActor())
	require.NoError(t, err)

	// A child cannot itself be a parent.
	_, err = f.svc.CreateCategory(context.Background(), dto.CreateCategoryRequest{
		Name: "Malbec", ParentID: &child.ID,
	}, testActor())
	assert.ErrorIs(t, err, serviceerr.ErrInvalidInput)
}

func TestUpdateCategoryKeepsSingleLevel(t *testing.T) {
	f := newCatFixture()
	root, err := f.svc.CreateCategory(context.Background(), dto.CreateCategoryRequest{Name: "Wine"}, testActor())
	require.NoError(t, err)
	child, err := f.svc.CreateCategory(context.Background(), dto.CreateCategoryRequest{
		Name: "Red", ParentID: &root.ID,
	}, testActor())
	require.NoError(t, err)
	loner, err := f.svc.CreateCategory(context.Background(), dto.CreateCategoryRequest{Name: "Spirits"}, testActor())
	require.NoError(t, err)

	// Re-parenting under a child would create a grandchild the one-level
	// ChildIDs expansion never reaches.
	_, err = f.svc.UpdateCategory(context.Background(), loner.ID, dto.UpdateCategoryRequest{
		ParentID: &child.ID,
	}, testActor())
	assert.ErrorIs(t, err, serviceerr.ErrInvalidInput)

	// A category that has children of its own cannot be nested either.
	other, err := f.svc.CreateCategory(context.Background(), dto.CreateCategoryRequest{Name: "Beer"}, testActor())
	require.NoError(t, err)
	_, err = f.svc.UpdateCategory(context.Background(), root.ID, dto.UpdateCategoryRequest{
		ParentID: &other.ID,
	}, testActor())
	assert.ErrorIs(t, err, serviceerr.ErrInvalidInput)

	// Moving a leaf under a root stays within one level.
	moved, err := f.svc.UpdateCategory(context.Background(), loner.ID, dto.UpdateCategoryRequest{
		ParentID: &root.ID,
	}, testActor())
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, root.ID, *moved.ParentID)
}

func TestUpdateCategorySelfParent(t *testing.T) {
	f := newCatFixture()
	cat, err := f.svc.CreateCategory(context.Background(), dto.CreateCategoryRequest{Name: "Beer"}, testActor())
	require.NoError(t, err)

	_, err = f.svc.UpdateCategory(context.Background(), cat.ID, dto.UpdateCategoryRequest{
		ParentID: &cat.ID,
	}, testActor())
	assert.ErrorIs(t, err, serviceerr.ErrInvalidInput)
}

func TestCreateLocationValidatesType(t *testing.T) {
	f := newCatFixture()
	resp, err := f.svc.CreateLocation(context.Background(), dto.CreateLocationRequest{
		Name: "Back Room", Type: string(model.LocationWarehouse),
	}, testActor())
	require.NoError(t, err)
	assert.Equal(t, "warehouse", resp.Type)

	_, err = f.svc.CreateLocation(context.Background(), dto.CreateLocationRequest{
		Name: "Nowhere", Type: "attic",
	}, testActor())
	assert.ErrorIs(t, err, serviceerr.ErrInvalidInput)
}
