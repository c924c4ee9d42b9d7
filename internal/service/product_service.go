package service

import (
	"context"
	"strings"

	"github.com/Lixing-Zhang/storefront-checkout/internal/models"
	"github.com/Lixing-Zhang/storefront-checkout/internal/money"
	"github.com/Lixing-Zhang/storefront-checkout/internal/pricing"
	"github.com/Lixing-Zhang/storefront-checkout/internal/repository"
)

// ProductService serves the catalog with checkout pricing applied for display
type ProductService struct {
	repo   repository.ProductRepository
	policy pricing.Policy
}

// ProductView is a catalog product as the storefront shows it.
// ChargedPrice is the per-unit amount checkout will actually bill in major
// units, which differs from Price when the per-item floor lifts it.
type ProductView struct {
	models.Product
	DisplayPrice string `json:"displayPrice"`
	ChargedPrice int64  `json:"chargedPrice"`
	Free         bool   `json:"free"`
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository, policy pricing.Policy) *ProductService {
	return &ProductService{
		repo:   repo,
		policy: policy,
	}
}

// ListProducts returns the catalog, optionally narrowed to one category
func (s *ProductService) ListProducts(ctx context.Context, category string) ([]ProductView, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		views = append(views, s.view(p))
	}
	return views, nil
}

// GetProduct returns a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id string) (*ProductView, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.view(*p)
	return &v, nil
}

func (s *ProductService) view(p models.Product) ProductView {
	v := ProductView{
		Product:      p,
		DisplayPrice: money.Format(s.policy.Currency, pricing.RoundMajor(p.Price)),
		Free:         p.IsFree(),
	}
	if !v.Free {
		v.ChargedPrice = s.policy.FromMinorUnits(s.policy.NormalizeUnit(p.Price))
	}
	return v
}
