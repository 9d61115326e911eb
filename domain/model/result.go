package model

import "time"

// Stage names the phase of a sync run.
type Stage string

const (
	StageValidation Stage = "validation"
	StageFetch      Stage = "fetch"
	StagePush       Stage = "push"
	StageDone       Stage = "done"
)

// SyncResult is the outcome of one orchestration run.
// Err is nil on success; otherwise Stage tells which phase failed.
type SyncResult struct {
	Request       TriggerRequest
	Target        LoadBalancerTarget
	Stage         Stage
	Err           error
	FetchAttempts int
	PushAttempts  int
	Fingerprint   string
	Skipped       bool
	Elapsed       time.Duration
}

func (r *SyncResult) Succeeded() bool { return r != nil && r.Err == nil }
