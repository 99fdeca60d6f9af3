package queue

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewJobAssignsIDAndTimestamp(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	j := NewJob("in.mp4", "out/", "u2net", now)
	if j.ID == "" {
		t.Error("NewJob should assign a non-empty ID")
	}
	if j.InputPath != "in.mp4" || j.OutputDir != "out/" || j.ModelName != "u2net" {
		t.Errorf("unexpected job fields: %+v", j)
	}
	if !j.SubmittedAt.Equal(now) {
		t.Errorf("SubmittedAt = %v, want %v", j.SubmittedAt, now)
	}
}

func TestJobMarshalRoundTrips(t *testing.T) {
	j := NewJob("in.mp4", "out/", "u2netp", time.Now())
	data, err := j.Marshal()
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	var got Job
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if got.ID != j.ID || got.InputPath != j.InputPath || got.ModelName != j.ModelName {
		t.Errorf("round-tripped job = %+v, want %+v", got, j)
	}
}

func TestTwoJobsGetDistinctIDs(t *testing.T) {
	a := NewJob("a.mp4", "out/", "u2net", time.Now())
	b := NewJob("b.mp4", "out/", "u2net", time.Now())
	if a.ID == b.ID {
		t.Error("two distinct jobs should not share an ID")
	}
}
