package service_test

import (
	"SwipeVault/internal/repo"
	"SwipeVault/internal/service"
	"SwipeVault/model"
	"testing"
)

func TestCancelPendingIngestJobs(t *testing.T) {
	cleanTables(t)

	user := createTestUser(t, "cancel_jobs")
	item := createTestItem(t, user.ID, nil)

	queued := createQueuedIngestJob(t, user.ID, item.ID)
	running := createQueuedIngestJob(t, user.ID, item.ID)
	done := createQueuedIngestJob(t, user.ID, item.ID)
	failed := createQueuedIngestJob(t, user.ID, item.ID)
	for id, status := range map[string]string{
		running.ID: model.JobStatusRunning,
		done.ID:    model.JobStatusDone,
		failed.ID:  model.JobStatusFailed,
	} {
		if err := repo.Db.Model(&model.MediaJob{}).Where("id = ?", id).
			Update("status", status).Error; err != nil {
			t.Fatal(err)
		}
	}

	affected, err := service.CancelPendingIngestJobs(item.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if affected != 2 {
		t.Fatalf("expect 2 jobs cancelled, got %d", affected)
	}

	if got := jobStatus(t, queued.ID); got != model.JobStatusCancelled {
		t.Fatalf("queued -> %s", got)
	}
	if got := jobStatus(t, running.ID); got != model.JobStatusCancelled {
		t.Fatalf("running -> %s", got)
	}
	if got := jobStatus(t, done.ID); got != model.JobStatusDone {
		t.Fatalf("done job must stay done, got %s", got)
	}
	if got := jobStatus(t, failed.ID); got != model.JobStatusFailed {
		t.Fatalf("failed job must stay failed, got %s", got)
	}

	var cancelled model.MediaJob
	if err := repo.Db.Where("id = ?", queued.ID).First(&cancelled).Error; err != nil {
		t.Fatal(err)
	}
	if cancelled.FinishedAt == nil {
		t.Fatal("cancelled job should carry a finish time")
	}
}

func TestCancelPendingIngestJobsIdempotent(t *testing.T) {
	cleanTables(t)

	user := createTestUser(t, "cancel_twice")
	item := createTestItem(t, user.ID, nil)
	createQueuedIngestJob(t, user.ID, item.ID)

	if _, err := service.CancelPendingIngestJobs(item.ID); err != nil {
		t.Fatal(err)
	}
	affected, err := service.CancelPendingIngestJobs(item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if affected != 0 {
		t.Fatalf("second cancel should match nothing, got %d", affected)
	}
}
