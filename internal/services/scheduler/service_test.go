package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
)

func noopHandler(ctx context.Context) error {
	return nil
}

// waitForJobRun polls until the named job has a recorded run and is idle again.
func waitForJobRun(t *testing.T, s *Service, name string) *JobStatus {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		status, err := s.GetJobStatus(name)
		if err != nil {
			t.Fatalf("GetJobStatus failed: %v", err)
		}
		if status.LastRun != nil && !status.IsRunning {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("job %s did not complete in time", name)
	return nil
}

func TestRegisterJobInvalidSchedule(t *testing.T) {
	s := NewService(arbor.NewLogger())

	err := s.RegisterJob("bad", "not a cron", "broken job", noopHandler)
	if err == nil {
		t.Error("Expected error for invalid schedule, got nil")
	}
}

func TestRegisterJobDuplicate(t *testing.T) {
	s := NewService(arbor.NewLogger())

	if err := s.RegisterJob("cleanup", "0 3 * * *", "first registration", noopHandler); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}

	err := s.RegisterJob("cleanup", "0 4 * * *", "second registration", noopHandler)
	if err == nil {
		t.Error("Expected error for duplicate job name, got nil")
	}
}

func TestTriggerJobUnknown(t *testing.T) {
	s := NewService(arbor.NewLogger())

	if err := s.TriggerJob("missing"); err == nil {
		t.Error("Expected error for unknown job, got nil")
	}
}

func TestTriggerJobRunsHandler(t *testing.T) {
	s := NewService(arbor.NewLogger())

	ran := make(chan struct{}, 1)
	handler := func(ctx context.Context) error {
		ran <- struct{}{}
		return nil
	}

	if err := s.RegisterJob("retention", "0 3 * * *", "purge old reports", handler); err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}

	if err := s.TriggerJob("retention"); err != nil {
		t.Fatalf("TriggerJob failed: %v", err)
	}

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("Handler was not invoked")
	}

	status := waitForJobRun(t, s, "retention")
	if status.LastError != "" {
		t.Errorf("Expected empty last error, got %q", status.LastError)
	}
	if status.LastRun == nil {
		t.Error("Expected last run to be recorded")
	}
}

func TestTriggerJobFailureRecorded(t *testing.T) {
	s := NewService(arbor.NewLogger())

	handler := func(ctx context.Context) error {
		return errors.New("storage offline")
	}

	if err := s.RegisterJob("sweep", "0 * * * *", "drop expired cache entries", handler); err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}

	if err := s.TriggerJob("sweep"); err != nil {
		t.Fatalf("TriggerJob failed: %v", err)
	}

	status := waitForJobRun(t, s, "sweep")
	if status.LastError != "storage offline" {
		t.Errorf("Expected last error 'storage offline', got %q", status.LastError)
	}
}

func TestTriggerJobPanicRecovered(t *testing.T) {
	s := NewService(arbor.NewLogger())

	handler := func(ctx context.Context) error {
		panic("handler exploded")
	}

	if err := s.RegisterJob("volatile", "0 3 * * *", "panics on purpose", handler); err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}

	if err := s.TriggerJob("volatile"); err != nil {
		t.Fatalf("TriggerJob failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		status, err := s.GetJobStatus("volatile")
		if err != nil {
			t.Fatalf("GetJobStatus failed: %v", err)
		}
		if status.LastError != "" {
			if status.LastError != "panic: handler exploded" {
				t.Errorf("Expected panic message in last error, got %q", status.LastError)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("Panic was not recorded in job status")
}

func TestGetJobStatusUnknown(t *testing.T) {
	s := NewService(arbor.NewLogger())

	if _, err := s.GetJobStatus("missing"); err == nil {
		t.Error("Expected error for unknown job, got nil")
	}
}

func TestGetAllJobStatuses(t *testing.T) {
	s := NewService(arbor.NewLogger())

	if err := s.RegisterJob("retention", "0 3 * * *", "purge old reports", noopHandler); err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}
	if err := s.RegisterJob("sweep", "0 * * * *", "drop expired cache entries", noopHandler); err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}

	statuses := s.GetAllJobStatuses()
	if len(statuses) != 2 {
		t.Fatalf("Expected 2 statuses, got %d", len(statuses))
	}

	retention, ok := statuses["retention"]
	if !ok {
		t.Fatal("Expected retention job in statuses")
	}
	if retention.Schedule != "0 3 * * *" {
		t.Errorf("Expected schedule '0 3 * * *', got %s", retention.Schedule)
	}
	if retention.Description != "purge old reports" {
		t.Errorf("Expected description 'purge old reports', got %s", retention.Description)
	}
	if !retention.Enabled {
		t.Error("Expected job to be enabled")
	}
}

func TestStartStopLifecycle(t *testing.T) {
	s := NewService(arbor.NewLogger())

	if err := s.RegisterJob("retention", "0 3 * * *", "purge old reports", noopHandler); err != nil {
		t.Fatalf("RegisterJob failed: %v", err)
	}

	if s.IsRunning() {
		t.Error("Expected scheduler to be stopped before Start")
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !s.IsRunning() {
		t.Error("Expected scheduler to be running after Start")
	}

	if err := s.Start(); err == nil {
		t.Error("Expected error starting an already running scheduler")
	}

	// Next run is only known once cron is running
	status, err := s.GetJobStatus("retention")
	if err != nil {
		t.Fatalf("GetJobStatus failed: %v", err)
	}
	if status.NextRun == nil {
		t.Error("Expected next run to be scheduled")
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if s.IsRunning() {
		t.Error("Expected scheduler to be stopped after Stop")
	}

	// Stopping again is a no-op
	if err := s.Stop(); err != nil {
		t.Errorf("Second Stop returned error: %v", err)
	}
}
