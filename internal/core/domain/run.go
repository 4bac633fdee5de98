package domain

import (
	"time"

	"github.com/google/uuid"
)

type RunPhase string

const (
	RunPhaseConsolidate RunPhase = "consolidate"
	RunPhasePrepare     RunPhase = "prepare"
	RunPhaseValidate    RunPhase = "validate"
	RunPhaseDeploy      RunPhase = "deploy"
	RunPhaseRemove      RunPhase = "remove"
)

// ParseRunPhase maps a request path segment onto a lifecycle phase.
func ParseRunPhase(s string) (RunPhase, error) {
	switch RunPhase(s) {
	case RunPhaseConsolidate, RunPhasePrepare, RunPhaseValidate, RunPhaseDeploy, RunPhaseRemove:
		return RunPhase(s), nil
	}
	return "", ErrInvalidPhase
}

type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusFailed    RunStatus = "FAILED"
)

// DeploymentRun records one execution of a lifecycle phase.
type DeploymentRun struct {
	ID         uuid.UUID
	Phase      RunPhase
	Status     RunStatus
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}
