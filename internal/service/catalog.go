package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// ProductIndex is the external search index; *es.ProductIndex implements it.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []uint, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
	Index  ProductIndex
}

func productFromRequest(req transport.ProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", ErrValidation)
	}
	if req.Price == nil {
		return nil, fmt.Errorf("price is required: %w", ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("price cannot be negative: %w", ErrValidation)
	}
	if req.Stock == nil {
		return nil, fmt.Errorf("stock is required: %w", ErrValidation)
	}
	if *req.Stock < 0 {
		return nil, fmt.Errorf("stock cannot be negative: %w", ErrValidation)
	}

	return &models.Product{
		Name:        name,
		Description: req.Description,
		Price:       req.Price.Round(2),
		Stock:       *req.Stock,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, categoryID *uint) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx, categoryID)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.ProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	prod, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}
	created, err := s.Repo.CreateProduct(ctx, prod)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.index(ctx, l, created)
	publish(ctx, s.Events, l, mykafka.TopicProductEvents, productKey(created.ID), map[string]any{
		"type":      "product_created",
		"productID": created.ID,
		"name":      created.Name,
	})
	return created, nil
}

// ReplaceProduct overwrites every field with the submitted shape.
func (s *CatalogService) ReplaceProduct(ctx context.Context, id uint, req transport.ProductRequest) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.replace_product", "product_id", id)

	prod, err := productFromRequest(req)
	if err != nil {
		return nil, err
	}
	saved, err := s.Repo.ReplaceProduct(ctx, id, prod)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("replace product: %w", err)
	}

	s.index(ctx, l, saved)
	publish(ctx, s.Events, l, mykafka.TopicProductEvents, productKey(saved.ID), map[string]any{
		"type":      "product_updated",
		"productID": saved.ID,
		"name":      saved.Name,
	})
	return saved, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.delete_product", "product_id", id)

	deleted, err := s.Repo.DeleteProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("delete product: %w", err)
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			l.Error("unindex_product_failed", "error", err)
		}
	}
	publish(ctx, s.Events, l, mykafka.TopicProductEvents, productKey(id), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return deleted, nil
}

// SearchProducts uses the search index when configured and the store otherwise.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("query is required: %w", ErrValidation)
	}

	if s.Index == nil {
		return s.Repo.SearchProducts(ctx, query, offset, limit)
	}

	total, ids, err := s.Index.Search(ctx, query, offset, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("search index: %w", err)
	}
	items, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (s *CatalogService) index(ctx context.Context, l *slog.Logger, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		l.Error("index_product_failed", "product_id", p.ID, "error", err)
	}
}

func productKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
