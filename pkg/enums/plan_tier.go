package enums

// PlanTier selects the product tier a draft was purchased under.
// The memories tier is time-boxed; forever pages never expire.
type PlanTier string

const (
	PlanTierMemories PlanTier = "memories"
	PlanTierForever  PlanTier = "forever"
)

func (t PlanTier) IsValid() bool {
	switch t {
	case PlanTierMemories, PlanTierForever:
		return true
	}
	return false
}

func (t PlanTier) String() string { return string(t) }
