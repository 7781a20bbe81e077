package plans

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/lovepage-app/lovepage-backend/pkg/errors"
	"github.com/lovepage-app/lovepage-backend/pkg/enums"
)

// MemoriesTTL is how long a memories-tier page stays live after finalization.
const MemoriesTTL = 12 * time.Hour

// Plan describes a purchasable tier. Amounts are minor units keyed by
// uppercase ISO currency so each provider charges in its own currency.
type Plan struct {
	Tier        enums.PlanTier
	Name        string
	Description string
	AmountCents map[string]int64
	TTL         time.Duration
}

var catalog = map[enums.PlanTier]Plan{
	enums.PlanTierMemories: {
		Tier:        enums.PlanTierMemories,
		Name:        "Memories",
		Description: "Your page, live for 12 hours",
		AmountCents: map[string]int64{
			"USD": 499,
			"BRL": 1490,
		},
		TTL: MemoriesTTL,
	},
	enums.PlanTierForever: {
		Tier:        enums.PlanTierForever,
		Name:        "Forever",
		Description: "Your page, forever",
		AmountCents: map[string]int64{
			"USD": 1499,
			"BRL": 4490,
		},
	},
}

// Lookup resolves a tier to its plan. Unknown tiers are a validation error;
// prices are never taken from the client.
func Lookup(tier enums.PlanTier) (Plan, error) {
	plan, ok := catalog[tier]
	if !ok {
		return Plan{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown plan tier").WithDetails(map[string]any{"tier": tier.String()})
	}
	return plan, nil
}

// Amount returns the charge amount in minor units for a currency.
func (p Plan) Amount(currency string) (int64, error) {
	amount, ok := p.AmountCents[strings.ToUpper(currency)]
	if !ok {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "plan has no price in currency").WithDetails(map[string]any{
			"tier":     p.Tier.String(),
			"currency": currency,
		})
	}
	return amount, nil
}

// DisplayPrice formats the amount as a major-unit decimal string, "4.99".
func (p Plan) DisplayPrice(currency string) (string, error) {
	amount, err := p.Amount(currency)
	if err != nil {
		return "", err
	}
	return decimal.NewFromInt(amount).Div(decimal.NewFromInt(100)).StringFixed(2), nil
}

// ExpireAt returns when a page purchased under tier stops being served, or nil
// for tiers without a time box. Pure in now so finalization stays testable.
func ExpireAt(tier enums.PlanTier, now time.Time) *time.Time {
	plan, ok := catalog[tier]
	if !ok || plan.TTL == 0 {
		return nil
	}
	at := now.Add(plan.TTL).UTC()
	return &at
}
