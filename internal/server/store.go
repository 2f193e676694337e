package server

import (
	"context"
	"errors"

	"github.com/NativeSquare/Cadence-sub000/internal/device"
	"github.com/NativeSquare/Cadence-sub000/internal/interview"
	"github.com/NativeSquare/Cadence-sub000/internal/scene"
)

var ErrNotFound = errors.New("not found")

const (
	StatusActive   = "active"
	StatusComplete = "complete"
)

// InterviewRecord is the persisted state of one onboarding interview.
type InterviewRecord struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Name        string `json:"name"`
	AutoConnect string `json:"autoConnect,omitempty"`
	// Checkpoint is the latest resumable position. Nil until the interview
	// leaves the welcome scenes.
	Checkpoint *scene.Resume `json:"checkpoint,omitempty"`
	// Responses holds the answers submitted when the question flow finished.
	Responses   interview.Responses `json:"responses,omitempty"`
	CreatedAt   string              `json:"createdAt"`
	UpdatedAt   string              `json:"updatedAt"`
	CompletedAt *string             `json:"completedAt,omitempty"`
}

// InterviewSummary is a list row.
type InterviewSummary struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Name      string `json:"name"`
	Scene     string `json:"scene,omitempty"`
	UpdatedAt string `json:"updatedAt"`
}

type Store interface {
	CreateInterview(ctx context.Context, rec InterviewRecord) error
	GetInterview(ctx context.Context, id string) (InterviewRecord, error)
	ListInterviews(ctx context.Context, status string) ([]InterviewSummary, error)
	SaveName(ctx context.Context, id, name string) error
	SaveCheckpoint(ctx context.Context, id string, cp scene.Resume) error
	SaveResponses(ctx context.Context, id string, r interview.Responses) error
	CompleteInterview(ctx context.Context, id string, r interview.Responses) error

	RecordConnection(ctx context.Context, id string, c device.ConnectionResult) error
	ListConnections(ctx context.Context, id string) ([]device.ConnectionResult, error)
}
