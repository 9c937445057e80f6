package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/africa-markett/storefront/pkg/errors"
)

// PaymentMethod identifies how the shopper intends to pay.
type PaymentMethod string

const (
	PaymentAfriWallet PaymentMethod = "afri-wallet"
	PaymentPaystack   PaymentMethod = "paystack"
	PaymentStripe     PaymentMethod = "stripe"
)

// ParsePaymentMethod validates a payment method id.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentAfriWallet, PaymentPaystack, PaymentStripe:
		return m, nil
	default:
		return "", apperrors.InvalidField("payment_method", fmt.Sprintf("unsupported payment method %q", s))
	}
}

// OrderSummary is the price breakdown shown before checkout.
type OrderSummary struct {
	UnitPrice   decimal.Decimal
	Quantity    int
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Total       decimal.Decimal
	Currency    string
}

// SummarizeOrder prices c with the given shipping fee.
func SummarizeOrder(c *Configuration, shippingFee decimal.Decimal) OrderSummary {
	return OrderSummary{
		UnitPrice:   c.EffectivePrice(),
		Quantity:    c.Quantity,
		Subtotal:    c.Subtotal(),
		ShippingFee: shippingFee,
		Total:       c.OrderTotal(shippingFee),
		Currency:    c.Currency,
	}
}

// MarshalJSON renders amounts with exactly two decimals.
func (s OrderSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		UnitPrice   string `json:"unit_price"`
		Quantity    int    `json:"quantity"`
		Subtotal    string `json:"subtotal"`
		ShippingFee string `json:"shipping_fee"`
		Total       string `json:"total"`
		Currency    string `json:"currency"`
	}{
		UnitPrice:   s.UnitPrice.StringFixed(2),
		Quantity:    s.Quantity,
		Subtotal:    s.Subtotal.StringFixed(2),
		ShippingFee: s.ShippingFee.StringFixed(2),
		Total:       s.Total.StringFixed(2),
		Currency:    s.Currency,
	})
}

// Order statuses. Checkout creates orders in pending_payment; the rest are
// set by the back office.
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusProcessing     = "processing"
	OrderStatusShipped        = "shipped"
	OrderStatusCompleted      = "completed"
	OrderStatusCancelled      = "cancelled"
)

var orderTransitions = map[string][]string{
	OrderStatusPendingPayment: {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing:     {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:        {OrderStatusCompleted},
	OrderStatusCompleted:      {},
	OrderStatusCancelled:      {},
}

// OrderStatuses lists every order status in lifecycle order.
func OrderStatuses() []string {
	return []string{
		OrderStatusPendingPayment,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusCompleted,
		OrderStatusCancelled,
	}
}

// ParseOrderStatus validates an order status.
func ParseOrderStatus(s string) (string, error) {
	if _, ok := orderTransitions[s]; !ok {
		return "", apperrors.InvalidField("status", fmt.Sprintf("must be one of %s, got %q", strings.Join(OrderStatuses(), ", "), s))
	}
	return s, nil
}

// Order is the confirmation produced by checkout.
type Order struct {
	ID               string        `json:"id"`
	ConfigurationID  string        `json:"configuration_id"`
	SessionID        string        `json:"session_id,omitempty"`
	ProductID        string        `json:"product_id"`
	Dimension        Dimension     `json:"dimension"`
	Medium           Medium        `json:"medium"`
	Surface          string        `json:"surface"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	DeliveryLocation string        `json:"delivery_location"`
	Summary          OrderSummary  `json:"summary"`
	Status           string        `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// CanTransitionTo reports whether the order may move to status.
func (o *Order) CanTransitionTo(status string) bool {
	return slices.Contains(orderTransitions[o.Status], status)
}

// TransitionTo moves the order to status. Completed and cancelled orders
// are final.
func (o *Order) TransitionTo(status string, now time.Time) error {
	if _, err := ParseOrderStatus(status); err != nil {
		return err
	}
	if !o.CanTransitionTo(status) {
		return apperrors.Conflict(fmt.Sprintf("order %s cannot move from %s to %s", o.ID, o.Status, status))
	}
	o.Status = status
	o.UpdatedAt = now
	return nil
}

// OrderID formats an order id as ORDYYYYMMDD-HHMMNNNN where NNNN is suffix
// modulo 10000, zero padded.
func OrderID(now time.Time, suffix int) string {
	if suffix < 0 {
		suffix = -suffix
	}
	return fmt.Sprintf("ORD%s%04d", now.Format("20060102-1504"), suffix%10000)
}

// NewOrder validates that c is ready to buy and builds its confirmation. A
// dimension, a medium and a delivery location are required.
func NewOrder(id string, c *Configuration, method PaymentMethod, deliveryLocation string, shippingFee decimal.Decimal, now time.Time) (*Order, error) {
	if c.SelectedDimension == nil {
		return nil, apperrors.InvalidField("dimension_id", "select a dimension before checkout")
	}
	if c.SelectedMedium == nil {
		return nil, apperrors.InvalidField("medium_id", "select a medium before checkout")
	}
	location := strings.TrimSpace(deliveryLocation)
	if location == "" {
		return nil, apperrors.InvalidField("delivery_location", "is required before payment")
	}

	return &Order{
		ID:               id,
		ConfigurationID:  c.ID,
		ProductID:        c.ProductID,
		Dimension:        *c.SelectedDimension,
		Medium:           *c.SelectedMedium,
		Surface:          c.SelectedSurface,
		PaymentMethod:    method,
		DeliveryLocation: location,
		Summary:          SummarizeOrder(c, shippingFee),
		Status:           OrderStatusPendingPayment,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}
