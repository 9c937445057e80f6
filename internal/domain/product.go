package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "github.com/africa-markett/storefront/pkg/errors"
)

// DefaultSurfaces is the surface set offered when a product lists none.
var DefaultSurfaces = []string{"Canvas", "Wood Panel", "Paper", "Board", "Glass"}

// Dimension is a purchasable size of a product with its own price and stock.
type Dimension struct {
	ID      int             `json:"id"`
	Size    string          `json:"size"`
	Price   decimal.Decimal `json:"price"`
	Stock   int             `json:"stock"`
	InStock bool            `json:"in_stock"`
}

// StockMismatch reports an InStock flag that disagrees with Stock. The flag
// comes from upstream data and is not corrected here.
func (d Dimension) StockMismatch() bool {
	return d.InStock != (d.Stock > 0)
}

// MarshalJSON adds the derived stock_mismatch flag.
func (d Dimension) MarshalJSON() ([]byte, error) {
	type plain Dimension
	return json.Marshal(struct {
		plain
		StockMismatch bool `json:"stock_mismatch"`
	}{plain(d), d.StockMismatch()})
}

// Medium is an art medium a product can be made in.
type Medium struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ShippingInfo is the display copy for the shipping tab.
type ShippingInfo struct {
	DeliveryTime string `json:"delivery_time"`
	Cost         string `json:"cost"`
	ReturnPolicy string `json:"return_policy"`
}

// Product is a catalog entry together with its selectable options.
type Product struct {
	ID             string            `json:"id"`
	Slug           string            `json:"slug"`
	Name           string            `json:"name"`
	Category       string            `json:"category"`
	Price          decimal.Decimal   `json:"price"`
	Currency       string            `json:"currency"`
	Images         []string          `json:"images"`
	Description    string            `json:"description"`
	Dimensions     []Dimension       `json:"dimensions"`
	Mediums        []Medium          `json:"mediums"`
	Surfaces       []string          `json:"surfaces"`
	Features       []string          `json:"features"`
	Specifications map[string]string `json:"specifications"`
	ShippingInfo   ShippingInfo      `json:"shipping_info"`
	InStock        bool              `json:"in_stock"`
}

// AllowedSurfaces returns the product's surfaces, or DefaultSurfaces.
func (p *Product) AllowedSurfaces() []string {
	if len(p.Surfaces) > 0 {
		return p.Surfaces
	}
	return DefaultSurfaces
}

// Validate checks the catalog invariants for a product.
func (p *Product) Validate() error {
	if p.ID == "" {
		return apperrors.InvalidField("id", "is required")
	}
	if p.Name == "" {
		return apperrors.InvalidField("name", "is required")
	}
	if p.Price.IsNegative() {
		return apperrors.InvalidField("price", "must not be negative")
	}

	dims := make(map[int]struct{}, len(p.Dimensions))
	for _, d := range p.Dimensions {
		if _, dup := dims[d.ID]; dup {
			return apperrors.InvalidField("dimensions", fmt.Sprintf("duplicate dimension id %d", d.ID))
		}
		dims[d.ID] = struct{}{}
		if d.Price.IsNegative() {
			return apperrors.InvalidField("dimensions", fmt.Sprintf("dimension %d has a negative price", d.ID))
		}
		if d.Stock < 0 {
			return apperrors.InvalidField("dimensions", fmt.Sprintf("dimension %d has negative stock", d.ID))
		}
	}

	mediums := make(map[int]struct{}, len(p.Mediums))
	for _, m := range p.Mediums {
		if _, dup := mediums[m.ID]; dup {
			return apperrors.InvalidField("mediums", fmt.Sprintf("duplicate medium id %d", m.ID))
		}
		mediums[m.ID] = struct{}{}
	}
	return nil
}
