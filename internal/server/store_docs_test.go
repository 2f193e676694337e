package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NativeSquare/Cadence-sub000/internal/database"
	"github.com/NativeSquare/Cadence-sub000/internal/device"
	"github.com/NativeSquare/Cadence-sub000/internal/flow"
	"github.com/NativeSquare/Cadence-sub000/internal/interview"
	"github.com/NativeSquare/Cadence-sub000/internal/migrations"
	"github.com/NativeSquare/Cadence-sub000/internal/scene"
)

func newTestStore(t *testing.T) *DocStore {
	t.Helper()
	db, err := database.Open(context.Background(), database.Memory)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return NewDocStore(db)
}

func TestDocStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.CreateInterview(ctx, InterviewRecord{ID: "a", Name: "Sam"}); err != nil {
		t.Fatalf("CreateInterview: %v", err)
	}
	rec, err := store.GetInterview(ctx, "a")
	if err != nil {
		t.Fatalf("GetInterview: %v", err)
	}
	if rec.Status != StatusActive || rec.CreatedAt == "" {
		t.Errorf("record = %+v", rec)
	}

	if err := store.SaveName(ctx, "a", "Samantha"); err != nil {
		t.Fatalf("SaveName: %v", err)
	}

	r := interview.NewResponses()
	r.Set(interview.QGoal, interview.Single("race"))
	r.Set("days", interview.Multi("mon", "tue"))
	phase := flow.AtQuestion(1, 2)
	cp := scene.Resume{Scene: scene.Questions, Responses: r, Name: "Samantha", Phase: &phase}
	if err := store.SaveCheckpoint(ctx, "a", cp); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}

	rec, err = store.GetInterview(ctx, "a")
	if err != nil {
		t.Fatalf("GetInterview: %v", err)
	}
	if rec.Name != "Samantha" {
		t.Errorf("name = %q", rec.Name)
	}
	if rec.Checkpoint == nil || rec.Checkpoint.Scene != scene.Questions {
		t.Fatalf("checkpoint = %+v", rec.Checkpoint)
	}
	if *rec.Checkpoint.Phase != phase {
		t.Errorf("phase = %+v, want %+v", *rec.Checkpoint.Phase, phase)
	}
	if got := rec.Checkpoint.Responses["days"]; !got.IsMulti() || len(got.Values()) != 2 {
		t.Errorf("days = %+v", got)
	}

	if err := store.CompleteInterview(ctx, "a", r); err != nil {
		t.Fatalf("CompleteInterview: %v", err)
	}
	rec, _ = store.GetInterview(ctx, "a")
	if rec.Status != StatusComplete || rec.CompletedAt == nil {
		t.Errorf("record = %+v", rec)
	}
	if rec.Responses["goal"].Value() != "race" {
		t.Errorf("responses = %+v", rec.Responses)
	}
}

func TestDocStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.GetInterview(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetInterview err = %v, want ErrNotFound", err)
	}
	if err := store.SaveName(ctx, "missing", "Sam"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SaveName err = %v, want ErrNotFound", err)
	}
}

func TestDocStoreList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, id := range []string{"a", "b"} {
		if err := store.CreateInterview(ctx, InterviewRecord{ID: id, Name: id}); err != nil {
			t.Fatalf("CreateInterview: %v", err)
		}
	}
	if err := store.SaveCheckpoint(ctx, "b", scene.Resume{Scene: scene.Synthesis, Responses: interview.NewResponses()}); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}
	if err := store.CompleteInterview(ctx, "a", interview.NewResponses()); err != nil {
		t.Fatalf("CompleteInterview: %v", err)
	}

	all, err := store.ListInterviews(ctx, "")
	if err != nil {
		t.Fatalf("ListInterviews: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}

	active, err := store.ListInterviews(ctx, StatusActive)
	if err != nil {
		t.Fatalf("ListInterviews: %v", err)
	}
	if len(active) != 1 || active[0].ID != "b" || active[0].Scene != "synthesis" {
		t.Errorf("active = %+v", active)
	}
}

func TestDocStoreConnections(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.CreateInterview(ctx, InterviewRecord{ID: "a"}); err != nil {
		t.Fatalf("CreateInterview: %v", err)
	}
	at := time.Date(2026, 3, 1, 7, 30, 0, 0, time.UTC)
	if err := store.RecordConnection(ctx, "a", device.ConnectionResult{Provider: "garmin", DeviceName: "Garmin", ConnectedAt: at}); err != nil {
		t.Fatalf("RecordConnection: %v", err)
	}
	if err := store.RecordConnection(ctx, "missing", device.ConnectionResult{Provider: "garmin", ConnectedAt: at}); err == nil {
		t.Error("RecordConnection for a missing interview succeeded")
	}

	conns, err := store.ListConnections(ctx, "a")
	if err != nil {
		t.Fatalf("ListConnections: %v", err)
	}
	if len(conns) != 1 || conns[0].DeviceName != "Garmin" || !conns[0].ConnectedAt.Equal(at) {
		t.Errorf("connections = %+v", conns)
	}
}
