package rental

// Status is the stored lifecycle state of a rental. Overdue is deliberately
// NOT a status: it is derived from the rental period so the stored state can
// never disagree with the due date.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCompleted:
		return true
	default:
		return false
	}
}
