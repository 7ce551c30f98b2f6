package transform

import (
	"fmt"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// AdjustContribution scales the periodic contribution, both the fiat and the
// sats part. A multiplier of 2 doubles the DCA, 0 stops it.
type AdjustContribution struct {
	Multiplier decimal.Decimal
}

func (ac *AdjustContribution) Name() string {
	return "adjust_contribution"
}

func (ac *AdjustContribution) Description() string {
	return fmt.Sprintf("Scale periodic contributions by %sx", ac.Multiplier.String())
}

func (ac *AdjustContribution) Validate(base *domain.RetirementPlan) error {
	if err := requirePlan(ac.Name(), base); err != nil {
		return err
	}
	if ac.Multiplier.IsNegative() {
		return NewTransformError(ac.Name(), "validate", fmt.Sprintf("multiplier must not be negative, got %s", ac.Multiplier), nil)
	}
	return nil
}

func (ac *AdjustContribution) Apply(base *domain.RetirementPlan) (*domain.RetirementPlan, error) {
	modified := base.DeepCopy()
	modified.ContributionFiat = base.ContributionFiat.Mul(ac.Multiplier)
	if base.ContributionSats > 0 {
		modified.ContributionSats = decimal.NewFromInt(base.ContributionSats).Mul(ac.Multiplier).Floor().IntPart()
	}
	return modified, nil
}
