package dto

import (
	"time"

	"vtds-application-vshasta/internal/core/domain"
)

type RunResponse struct {
	ID         string     `json:"id"`
	Phase      string     `json:"phase"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func ToRunResponse(run *domain.DeploymentRun) RunResponse {
	return RunResponse{
		ID:         run.ID.String(),
		Phase:      string(run.Phase),
		Status:     string(run.Status),
		Error:      run.Error,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
}

type ListRunsResponse struct {
	Items      []RunResponse `json:"items"`
	Total      int           `json:"total"`
	PageSize   int           `json:"page_size"`
	NextOffset int           `json:"next_offset"`
}
