package common

import "fmt"

// BatchStatus mirrors the on-chain custody status enum.
type BatchStatus uint8

const (
	// StatusCreated exists only in snapshots written by early registry
	// deployments. New batches start as StatusReceived, held by the creator.
	StatusCreated = BatchStatus(iota)
	StatusInTransit
	StatusReceived
)

func (s BatchStatus) String() string {
	switch s {
	case StatusCreated:
		return "Created"
	case StatusInTransit:
		return "InTransit"
	case StatusReceived:
		return "Received"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(s))
	}
}

// ParseBatchStatus parses the string form stored in the projection.
func ParseBatchStatus(s string) (BatchStatus, error) {
	switch s {
	case "Created":
		return StatusCreated, nil
	case "InTransit":
		return StatusInTransit, nil
	case "Received":
		return StatusReceived, nil
	default:
		return 0, fmt.Errorf("unknown batch status %q", s)
	}
}
