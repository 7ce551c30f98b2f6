package transform

import (
	"fmt"

	"github.com/rgehrsitz/btcgo/internal/domain"
	"github.com/shopspring/decimal"
)

// PostponeRetirement moves the retirement age later by a number of years.
// The drawdown phase shrinks by the same amount since life expectancy is fixed.
type PostponeRetirement struct {
	Years int
}

func (pt *PostponeRetirement) Name() string {
	return "postpone_retirement"
}

func (pt *PostponeRetirement) Description() string {
	return fmt.Sprintf("Postpone retirement by %d years", pt.Years)
}

func (pt *PostponeRetirement) Validate(base *domain.RetirementPlan) error {
	if err := requirePlan(pt.Name(), base); err != nil {
		return err
	}
	if pt.Years < 0 {
		return NewTransformError(pt.Name(), "validate", fmt.Sprintf("years must be non-negative, got %d", pt.Years), nil)
	}
	if base.RetirementAge+pt.Years >= base.LifeExpectancy {
		return NewTransformError(pt.Name(), "validate",
			fmt.Sprintf("retiring at %d leaves no drawdown before life expectancy %d", base.RetirementAge+pt.Years, base.LifeExpectancy), nil)
	}
	return nil
}

func (pt *PostponeRetirement) Apply(base *domain.RetirementPlan) (*domain.RetirementPlan, error) {
	modified := base.DeepCopy()
	modified.RetirementAge += pt.Years
	return modified, nil
}

// SetWithdrawalRate replaces the safe withdrawal rate.
type SetWithdrawalRate struct {
	Rate decimal.Decimal
}

func (sw *SetWithdrawalRate) Name() string {
	return "set_withdrawal_rate"
}

func (sw *SetWithdrawalRate) Description() string {
	return fmt.Sprintf("Set safe withdrawal rate to %s%%", sw.Rate.Mul(decimal.NewFromInt(100)).StringFixed(1))
}

func (sw *SetWithdrawalRate) Validate(base *domain.RetirementPlan) error {
	if err := requirePlan(sw.Name(), base); err != nil {
		return err
	}
	if !sw.Rate.IsPositive() || sw.Rate.GreaterThan(decimal.NewFromInt(1)) {
		return NewTransformError(sw.Name(), "validate", fmt.Sprintf("rate must be in (0, 1], got %s", sw.Rate), nil)
	}
	return nil
}

func (sw *SetWithdrawalRate) Apply(base *domain.RetirementPlan) (*domain.RetirementPlan, error) {
	modified := base.DeepCopy()
	modified.SafeWithdrawalRate = sw.Rate
	return modified, nil
}

// SetWithdrawalPolicy switches between fixed real and percent of balance drawdown.
type SetWithdrawalPolicy struct {
	Policy domain.WithdrawalPolicy
}

func (sp *SetWithdrawalPolicy) Name() string {
	return "set_withdrawal_policy"
}

func (sp *SetWithdrawalPolicy) Description() string {
	return fmt.Sprintf("Withdraw using the %s policy", sp.Policy)
}

func (sp *SetWithdrawalPolicy) Validate(base *domain.RetirementPlan) error {
	if err := requirePlan(sp.Name(), base); err != nil {
		return err
	}
	if _, err := domain.ParseWithdrawalPolicy(string(sp.Policy)); err != nil || sp.Policy == "" {
		return NewTransformError(sp.Name(), "validate", fmt.Sprintf("invalid withdrawal policy %q", sp.Policy), err)
	}
	return nil
}

func (sp *SetWithdrawalPolicy) Apply(base *domain.RetirementPlan) (*domain.RetirementPlan, error) {
	policy, err := domain.ParseWithdrawalPolicy(string(sp.Policy))
	if err != nil {
		return nil, err
	}
	modified := base.DeepCopy()
	modified.WithdrawalPolicy = policy
	return modified, nil
}

// SetTargetIncome replaces the annual income target, in today's money.
type SetTargetIncome struct {
	Amount decimal.Decimal
}

func (st *SetTargetIncome) Name() string {
	return "set_target_income"
}

func (st *SetTargetIncome) Description() string {
	return fmt.Sprintf("Set target annual income to %s", st.Amount.StringFixed(2))
}

func (st *SetTargetIncome) Validate(base *domain.RetirementPlan) error {
	if err := requirePlan(st.Name(), base); err != nil {
		return err
	}
	if st.Amount.IsNegative() {
		return NewTransformError(st.Name(), "validate", "amount must not be negative", nil)
	}
	return nil
}

func (st *SetTargetIncome) Apply(base *domain.RetirementPlan) (*domain.RetirementPlan, error) {
	modified := base.DeepCopy()
	modified.TargetAnnualIncome = st.Amount
	return modified, nil
}

// SetCurrentBTC replaces the starting holdings.
type SetCurrentBTC struct {
	BTC decimal.Decimal
}

func (sc *SetCurrentBTC) Name() string {
	return "set_current_btc"
}

func (sc *SetCurrentBTC) Description() string {
	return fmt.Sprintf("Start from %s BTC", sc.BTC.StringFixed(8))
}

func (sc *SetCurrentBTC) Validate(base *domain.RetirementPlan) error {
	if err := requirePlan(sc.Name(), base); err != nil {
		return err
	}
	if sc.BTC.IsNegative() {
		return NewTransformError(sc.Name(), "validate", "btc must not be negative", nil)
	}
	return nil
}

func (sc *SetCurrentBTC) Apply(base *domain.RetirementPlan) (*domain.RetirementPlan, error) {
	modified := base.DeepCopy()
	modified.CurrentBTC = sc.BTC
	return modified, nil
}
