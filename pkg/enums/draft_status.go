package enums

// DraftStatus tracks the lifecycle of a payment-intent draft.
type DraftStatus string

const (
	DraftStatusPending   DraftStatus = "pending"
	DraftStatusCompleted DraftStatus = "completed"
)

func (s DraftStatus) IsValid() bool {
	switch s {
	case DraftStatusPending, DraftStatusCompleted:
		return true
	}
	return false
}

func (s DraftStatus) String() string { return string(s) }
