// Package seed embeds the storefront's demo catalog and reviews.
package seed

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/africa-markett/storefront/internal/domain"
)

var (
	//go:embed products.json
	productsJSON []byte

	//go:embed reviews.json
	reviewsJSON []byte
)

// Products decodes the embedded catalog.
func Products() ([]domain.Product, error) {
	var products []domain.Product
	if err := decodeStrict(productsJSON, &products); err != nil {
		return nil, fmt.Errorf("decode seed products: %w", err)
	}
	return products, nil
}

// Reviews decodes the embedded reviews.
func Reviews() ([]domain.Review, error) {
	var reviews []domain.Review
	if err := decodeStrict(reviewsJSON, &reviews); err != nil {
		return nil, fmt.Errorf("decode seed reviews: %w", err)
	}
	return reviews, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
