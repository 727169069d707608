package catalog

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Static serves a fixed asset list.
type Static struct {
	assets []Asset
}

func NewStatic(assets []Asset) *Static {
	return &Static{assets: slices.Clone(assets)}
}

func (s *Static) ListAssets(ctx context.Context) ([]Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return slices.Clone(s.assets), nil
}

// Demo returns the three demo assets.
func Demo() *Static {
	return NewStatic([]Asset{
		{
			ID:             "gov-bond-001",
			Name:           "Government Bonds (Series A)",
			Type:           "Bond",
			RiskLevel:      RiskLow,
			Description:    "Backed by the government. Very stable, lower returns.",
			ExpectedReturn: "6-7% p.a.",
			MinInvestment:  decimal.NewFromInt(100),
		},
		{
			ID:             "index-fund-500",
			Name:           "Blue Chip Index Fund",
			Type:           "Index Fund",
			RiskLevel:      RiskMedium,
			Description:    "Basket of top 50 companies. Balanced growth and stability.",
			ExpectedReturn: "10-12% p.a.",
			MinInvestment:  decimal.NewFromInt(50),
		},
		{
			ID:             "tech-startup-fund",
			Name:           "Emerging Tech Crypto Fund",
			Type:           "Crypto/Startup",
			RiskLevel:      RiskHigh,
			Description:    "High volatility assets. Potential for high loss or high gain.",
			ExpectedReturn: "-50% to +200% p.a.",
			MinInvestment:  decimal.NewFromInt(500),
		},
	})
}
