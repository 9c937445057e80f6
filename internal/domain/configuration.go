package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/africa-markett/storefront/pkg/errors"
)

// Tab is a content region of the product detail view.
type Tab string

// Tabs. Every tab can be reached from every other one.
const (
	TabDetails  Tab = "details"
	TabShipping Tab = "shipping"
	TabReviews  Tab = "reviews"
)

// ParseTab validates a tab id.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(s); t {
	case TabDetails, TabShipping, TabReviews:
		return t, nil
	default:
		return "", apperrors.InvalidField("tab", fmt.Sprintf("must be one of details, shipping, reviews, got %q", s))
	}
}

// MinQuantity is the smallest orderable quantity.
const MinQuantity = 1

// Configuration is the selection state of one product detail view. It
// carries a snapshot of the product's options so it can be stored and
// validated without the catalog.
type Configuration struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	BasePrice decimal.Decimal `json:"base_price"`
	Currency  string          `json:"currency"`

	Dimensions []Dimension `json:"dimensions"`
	Mediums    []Medium    `json:"mediums"`
	Surfaces   []string    `json:"surfaces"`

	SelectedDimension *Dimension `json:"selected_dimension"`
	SelectedMedium    *Medium    `json:"selected_medium"`
	SelectedSurface   string     `json:"selected_surface"`
	Quantity          int        `json:"quantity"`
	ActiveTab         Tab        `json:"active_tab"`

	// Version counts successful saves. A configuration that has never been
	// saved is at version 0.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckSaveVersion decides whether a configuration read at version expected
// may overwrite what the store holds under id. found is false when nothing
// is stored, in which case only a never-saved configuration may be written.
func CheckSaveVersion(id string, expected, stored int64, found bool) error {
	switch {
	case !found && expected > 0:
		return apperrors.NotFound("configuration", id)
	case found && stored != expected:
		return apperrors.Conflict(fmt.Sprintf("configuration %s was changed by another request", id))
	default:
		return nil
	}
}

// NewConfiguration opens a configuration for p with the first dimension,
// first medium and first allowed surface preselected, quantity 1 and the
// details tab active.
func NewConfiguration(id string, p *Product, now time.Time) *Configuration {
	c := &Configuration{
		ID:         id,
		ProductID:  p.ID,
		BasePrice:  p.Price,
		Currency:   p.Currency,
		Dimensions: slices.Clone(p.Dimensions),
		Mediums:    slices.Clone(p.Mediums),
		Surfaces:   slices.Clone(p.AllowedSurfaces()),
		Quantity:   MinQuantity,
		ActiveTab:  TabDetails,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if len(c.Dimensions) > 0 {
		d := c.Dimensions[0]
		c.SelectedDimension = &d
	}
	if len(c.Mediums) > 0 {
		m := c.Mediums[0]
		c.SelectedMedium = &m
	}
	if len(c.Surfaces) > 0 {
		c.SelectedSurface = c.Surfaces[0]
	}
	return c
}

// SelectDimension selects one of the product's own dimensions. Stock is not
// checked: an out-of-stock size may still be configured.
func (c *Configuration) SelectDimension(id int) error {
	for _, d := range c.Dimensions {
		if d.ID == id {
			c.SelectedDimension = &d
			return nil
		}
	}
	return apperrors.InvalidField("dimension_id", fmt.Sprintf("dimension %d is not offered for product %s", id, c.ProductID))
}

// SelectMedium selects one of the product's own mediums.
func (c *Configuration) SelectMedium(id int) error {
	for _, m := range c.Mediums {
		if m.ID == id {
			c.SelectedMedium = &m
			return nil
		}
	}
	return apperrors.InvalidField("medium_id", fmt.Sprintf("medium %d is not offered for product %s", id, c.ProductID))
}

// SelectSurface selects one of the allowed surfaces. Matching ignores case
// and the stored value uses the catalog's spelling.
func (c *Configuration) SelectSurface(surface string) error {
	for _, s := range c.Surfaces {
		if strings.EqualFold(s, strings.TrimSpace(surface)) {
			c.SelectedSurface = s
			return nil
		}
	}
	return apperrors.InvalidField("surface", fmt.Sprintf("must be one of %s, got %q", strings.Join(c.Surfaces, ", "), surface))
}

// SetQuantity sets the quantity, clamping anything below 1 to 1.
func (c *Configuration) SetQuantity(n int) {
	if n < MinQuantity {
		n = MinQuantity
	}
	c.Quantity = n
}

// SwitchTab activates tab t.
func (c *Configuration) SwitchTab(t string) error {
	tab, err := ParseTab(t)
	if err != nil {
		return err
	}
	c.ActiveTab = tab
	return nil
}

// EffectivePrice is the selected dimension's price, or the base price when
// no dimension is selected.
func (c *Configuration) EffectivePrice() decimal.Decimal {
	if c.SelectedDimension != nil {
		return c.SelectedDimension.Price
	}
	return c.BasePrice
}

// OrderTotal returns EffectivePrice * Quantity + shippingFee.
func (c *Configuration) OrderTotal(shippingFee decimal.Decimal) decimal.Decimal {
	return c.Subtotal().Add(shippingFee)
}

// Subtotal returns EffectivePrice * Quantity.
func (c *Configuration) Subtotal() decimal.Decimal {
	return c.EffectivePrice().Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// Touch records a mutation at now.
func (c *Configuration) Touch(now time.Time) {
	c.UpdatedAt = now
}
