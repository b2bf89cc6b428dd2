package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tkamphefner/Inventory/internal/audit"
	"github.com/tkamphefner/Inventory/internal/dto"
	"github.com/tkamphefner/Inventory/internal/ident"
	"github.com/tkamphefner/Inventory/internal/model"
	"github.com/tkamphefner/Inventory/internal/repository"
	"github.com/tkamphefner/Inventory/internal/serviceerr"

	"gorm.io/gorm"
)

// CatalogService covers products, categories and locations: plain CRUD with
// soft-deleted products and barcode uniqueness among non-null barcodes.
type CatalogService interface {
	CreateProduct(ctx context.Context, req dto.CreateProductRequest, actor Actor) (*dto.ProductResponse, error)
	GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error)
	ListProducts(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	UpdateProduct(ctx context.Context, id string, req dto.UpdateProductRequest, actor Actor) (*dto.ProductResponse, error)
	DeactivateProduct(ctx context.Context, id string, actor Actor) error
	ReactivateProduct(ctx context.Context, id string, actor Actor) error

	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest, actor Actor) (*dto.CategoryResponse, error)
	ListCategories(ctx context.Context) ([]dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, id string, req dto.UpdateCategoryRequest, actor Actor) (*dto.CategoryResponse, error)

	CreateLocation(ctx context.Context, req dto.CreateLocationRequest, actor Actor) (*dto.LocationResponse, error)
	ListLocations(ctx context.Context) ([]dto.LocationResponse, error)
	UpdateLocation(ctx context.Context, id string, req dto.UpdateLocationRequest, actor Actor) (*dto.LocationResponse, error)
}

type catalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	locations  repository.LocationRepository
	auditor    audit.Recorder
}

func NewCatalogService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	locations repository.LocationRepository,
	auditor audit.Recorder,
) CatalogService {
	return &catalogService{
		products:   products,
		categories: categories,
		locations:  locations,
		auditor:    auditor,
	}
}

// ── Products ─────────────────────────────────────────────────────────────────

func (s *catalogService) CreateProduct(ctx context.Context, req dto.CreateProductRequest, actor Actor) (*dto.ProductResponse, error) {
	if err := s.checkBarcodeFree(ctx, req.Barcode, ""); err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *req.CategoryID); err != nil {
			return nil, asNotFound(err, "category", *req.CategoryID)
		}
	}

	caseSize := req.CaseSize
	if caseSize < 1 {
		caseSize = 1
	}
	product := &model.Product{
		ID:           ident.New(ident.PrefixProduct),
		Name:         req.Name,
		Barcode:      req.Barcode,
		CategoryID:   req.CategoryID,
		SupplierID:   req.SupplierID,
		UnitPrice:    req.UnitPrice,
		UnitCost:     req.UnitCost,
		CaseSize:     caseSize,
		MinimumStock: req.MinimumStock,
		IsActive:     true,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, translateDuplicate(err, "barcode")
	}

	s.auditor.Record(ctx, actor.ID, "product.create", "product", product.ID, map[string]interface{}{
		"name": req.Name,
	}, actor.Origin)

	return productToResponse(product), nil
}

func (s *catalogService) GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "product", id)
	}
	return productToResponse(product), nil
}

func (s *catalogService) GetProductByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	product, err := s.products.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, asNotFound(err, "product with barcode", barcode)
	}
	return productToResponse(product), nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id string, req dto.UpdateProductRequest, actor Actor) (*dto.ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "product", id)
	}

	if req.Barcode != nil {
		if err := s.checkBarcodeFree(ctx, req.Barcode, id); err != nil {
			return nil, err
		}
		product.Barcode = req.Barcode
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *req.CategoryID); err != nil {
			return nil, asNotFound(err, "category", *req.CategoryID)
		}
		product.CategoryID = req.CategoryID
	}
	if req.SupplierID != nil {
		product.SupplierID = req.SupplierID
	}
	if req.UnitPrice != nil {
		product.UnitPrice = *req.UnitPrice
	}
	if req.UnitCost != nil {
		product.UnitCost = *req.UnitCost
	}
	if req.CaseSize != nil {
		product.CaseSize = *req.CaseSize
	}
	if req.MinimumStock != nil {
		product.MinimumStock = *req.MinimumStock
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, translateDuplicate(err, "barcode")
	}

	s.auditor.Record(ctx, actor.ID, "product.update", "product", id, nil, actor.Origin)
	return productToResponse(product), nil
}

func (s *catalogService) DeactivateProduct(ctx context.Context, id string, actor Actor) error {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return asNotFound(err, "product", id)
	}
	if err := s.products.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, actor.ID, "product.deactivate", "product", id, nil, actor.Origin)
	return nil
}

func (s *catalogService) ReactivateProduct(ctx context.Context, id string, actor Actor) error {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return asNotFound(err, "product", id)
	}
	if err := s.products.Reactivate(ctx, id); err != nil {
		return err
	}
	s.auditor.Record(ctx, actor.ID, "product.reactivate", "product", id, nil, actor.Origin)
	return nil
}

// checkBarcodeFree enforces barcode uniqueness among non-null values.
// selfID excludes the product being updated.
func (s *catalogService) checkBarcodeFree(ctx context.Context, barcode *string, selfID string) error {
	if barcode == nil || *barcode == "" {
		return nil
	}
	existing, err := s.products.FindByBarcode(ctx, *barcode)
	if err != nil {
		if isMissing(err) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return fmt.Errorf("barcode %s already in use by %s: %w", *barcode, existing.ID, serviceerr.ErrDuplicateKey)
	}
	return nil
}

// translateDuplicate maps a database unique violation to the DuplicateKey
// error kind. The pre-check above races with concurrent creates; the database
// constraint is the real guarantee.
func translateDuplicate(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s already in use: %w", what, serviceerr.ErrDuplicateKey)
	}
	return err
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Barcode:      p.Barcode,
		CategoryID:   p.CategoryID,
		SupplierID:   p.SupplierID,
		UnitPrice:    p.UnitPrice,
		UnitCost:     p.UnitCost,
		CaseSize:     p.CaseSize,
		MinimumStock: p.MinimumStock,
		IsActive:     p.IsActive,
		CreatedAt:    formatTime(p.CreatedAt),
	}
	if p.Category != nil {
		resp.CategoryName = &p.Category.Name
	}
	return resp
}

// ── Categories ───────────────────────────────────────────────────────────────

func (s *catalogService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest, actor Actor) (*dto.CategoryResponse, error) {
	if req.ParentID != nil {
		parent, err := s.categories.FindByID(ctx, *req.ParentID)
		if err != nil {
			return nil, asNotFound(err, "category", *req.ParentID)
		}
		// Single-level hierarchy: a child cannot itself become a parent's child.
		if parent.ParentID != nil {
			return nil, fmt.Errorf("category %s is already a child; only one level of nesting is supported: %w",
				*req.ParentID, serviceerr.ErrInvalidInput)
		}
	}

	category := &model.Category{
		ID:       ident.New(ident.PrefixCategory),
		Name:     req.Name,
		ParentID: req.ParentID,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, translateDuplicate(err, "category name")
	}

	s.auditor.Record(ctx, actor.ID, "category.create", "category", category.ID, nil, actor.Origin)
	return categoryToResponse(category), nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CategoryResponse, len(cats))
	for i := range cats {
		resp[i] = *categoryToResponse(&cats[i])
	}
	return resp, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id string, req dto.UpdateCategoryRequest, actor Actor) (*dto.CategoryResponse, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "category", id)
	}
	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, fmt.Errorf("category cannot be its own parent: %w", serviceerr.ErrInvalidInput)
		}
		parent, err := s.categories.FindByID(ctx, *req.ParentID)
		if err != nil {
			return nil, asNotFound(err, "category", *req.ParentID)
		}
		// Same single-level rule as CreateCategory: the new parent must be a
		// root, and a category that has children of its own cannot be nested.
		if parent.ParentID != nil {
			return nil, fmt.Errorf("category %s is already a child; only one level of nesting is supported: %w",
				*req.ParentID, serviceerr.ErrInvalidInput)
		}
		children, err := s.categories.ChildIDs(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(children) > 0 {
			return nil, fmt.Errorf("category %s has children and cannot become a child itself: %w",
				id, serviceerr.ErrInvalidInput)
		}
		category.ParentID = req.ParentID
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, translateDuplicate(err, "category name")
	}

	s.auditor.Record(ctx, actor.ID, "category.update", "category", id, nil, actor.Origin)
	return categoryToResponse(category), nil
}

func categoryToResponse(c *model.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name, ParentID: c.ParentID}
}

// ── Locations ────────────────────────────────────────────────────────────────

func (s *catalogService) CreateLocation(ctx context.Context, req dto.CreateLocationRequest, actor Actor) (*dto.LocationResponse, error) {
	locType := model.LocationType(req.Type)
	if !locType.Valid() {
		return nil, fmt.Errorf("unknown location type %q: %w", req.Type, serviceerr.ErrInvalidInput)
	}
	location := &model.Location{
		ID:   ident.New(ident.PrefixLocation),
		Name: req.Name,
		Type: locType,
	}
	if err := s.locations.Create(ctx, location); err != nil {
		return nil, translateDuplicate(err, "location name")
	}

	s.auditor.Record(ctx, actor.ID, "location.create", "location", location.ID, nil, actor.Origin)
	return locationToResponse(location), nil
}

func (s *catalogService) ListLocations(ctx context.Context) ([]dto.LocationResponse, error) {
	locs, err := s.locations.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.LocationResponse, len(locs))
	for i := range locs {
		resp[i] = *locationToResponse(&locs[i])
	}
	return resp, nil
}

func (s *catalogService) UpdateLocation(ctx context.Context, id string, req dto.UpdateLocationRequest, actor Actor) (*dto.LocationResponse, error) {
	location, err := s.locations.FindByID(ctx, id)
	if err != nil {
		return nil, asNotFound(err, "location", id)
	}
	if req.Name != nil {
		location.Name = *req.Name
	}
	if req.Type != nil {
		locType := model.LocationType(*req.Type)
		if !locType.Valid() {
			return nil, fmt.Errorf("unknown location type %q: %w", *req.Type, serviceerr.ErrInvalidInput)
		}
		location.Type = locType
	}
	if err := s.locations.Update(ctx, location); err != nil {
		return nil, translateDuplicate(err, "location name")
	}

	s.auditor.Record(ctx, actor.ID, "location.update", "location", id, nil, actor.Origin)
	return locationToResponse(location), nil
}

func locationToResponse(l *model.Location) *dto.LocationResponse {
	return &dto.LocationResponse{ID: l.ID, Name: l.Name, Type: string(l.Type)}
}
