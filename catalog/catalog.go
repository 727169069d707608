// Package catalog is the asset catalog collaborator. The core only uses it
// to check that an asset id exists before investing.
package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUnavailable marks a catalog that could not be reached. Callers treat it
// as "no answer" and carry on.
var ErrUnavailable = errors.New("asset catalog unavailable")

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

type Asset struct {
	ID             string          `json:"id" yaml:"id"`
	Name           string          `json:"name" yaml:"name"`
	Type           string          `json:"type" yaml:"type"`
	RiskLevel      RiskLevel       `json:"riskLevel" yaml:"risk_level"`
	Description    string          `json:"description" yaml:"description"`
	ExpectedReturn string          `json:"expectedReturn" yaml:"expected_return"`
	MinInvestment  decimal.Decimal `json:"minInvestment" yaml:"min_investment"`
}

type Catalog interface {
	ListAssets(ctx context.Context) ([]Asset, error)
}

// Find looks id up in c. It returns ok=false with a nil error when the
// catalog answered and the asset is not listed.
func Find(ctx context.Context, c Catalog, id string) (Asset, bool, error) {
	assets, err := c.ListAssets(ctx)
	if err != nil {
		return Asset{}, false, err
	}
	for _, a := range assets {
		if a.ID == id {
			return a, true, nil
		}
	}
	return Asset{}, false, nil
}
