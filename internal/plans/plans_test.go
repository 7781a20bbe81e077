package plans

import (
	"testing"
	"time"

	pkgerrors "github.com/lovepage-app/lovepage-backend/pkg/errors"
	"github.com/lovepage-app/lovepage-backend/pkg/enums"
)

func TestLookup(t *testing.T) {
	plan, err := Lookup(enums.PlanTierMemories)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if plan.TTL != 12*time.Hour {
		t.Fatalf("memories TTL = %v, want 12h", plan.TTL)
	}

	forever, err := Lookup(enums.PlanTierForever)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if forever.TTL != 0 {
		t.Fatalf("forever tier must not be time boxed, got %v", forever.TTL)
	}

	_, err = Lookup(enums.PlanTier("platinum"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown tier, got %v", err)
	}
}

func TestAmountAndDisplayPrice(t *testing.T) {
	plan, _ := Lookup(enums.PlanTierMemories)

	amount, err := plan.Amount("usd")
	if err != nil {
		t.Fatalf("Amount: %v", err)
	}
	if amount != 499 {
		t.Fatalf("Amount(usd) = %d, want 499", amount)
	}

	price, err := plan.DisplayPrice("USD")
	if err != nil {
		t.Fatalf("DisplayPrice: %v", err)
	}
	if price != "4.99" {
		t.Fatalf("DisplayPrice = %q, want 4.99", price)
	}

	if _, err := plan.Amount("JPY"); err == nil {
		t.Fatal("expected error for unpriced currency")
	}
}

func TestExpireAt(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	at := ExpireAt(enums.PlanTierMemories, now)
	if at == nil {
		t.Fatal("memories tier must expire")
	}
	want := now.Add(12 * time.Hour)
	if !at.Equal(want) {
		t.Fatalf("ExpireAt = %v, want %v", at, want)
	}

	if got := ExpireAt(enums.PlanTierForever, now); got != nil {
		t.Fatalf("forever tier must not expire, got %v", got)
	}
	if got := ExpireAt(enums.PlanTier("platinum"), now); got != nil {
		t.Fatalf("unknown tier must not expire, got %v", got)
	}
}
