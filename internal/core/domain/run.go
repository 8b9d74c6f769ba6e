package domain

import "time"

// RunRecord is the persisted trace of one action invocation.
type RunRecord struct {
	ID        string        `json:"id"`
	Action    ActionName    `json:"action"`
	OK        bool          `json:"ok"`
	Kind      ErrorKind     `json:"kind"`
	Message   string        `json:"message"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Trigger   string        `json:"trigger"` // ui, cli, scheduler
}

// NewRunRecord derives a record from a finished result.
func NewRunRecord(id string, res Result, trigger string) *RunRecord {
	return &RunRecord{
		ID:        id,
		Action:    res.Action,
		OK:        res.OK,
		Kind:      res.Kind,
		Message:   res.Message,
		StartedAt: res.StartedAt,
		Duration:  res.Duration,
		Trigger:   trigger,
	}
}
