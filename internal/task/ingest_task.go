package task

import (
	"SwipeVault/config"
	"SwipeVault/internal/mq"
	"SwipeVault/internal/repo"
	"SwipeVault/internal/service"
	"SwipeVault/internal/storage"
	"SwipeVault/model"
	"SwipeVault/utils"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// IngestMessage is the payload sent to the worker.
type IngestMessage struct {
	JobID   string `json:"job_id"`
	Attempt int    `json:"attempt"`
}

// IngestInput is the structured job input stored on the media_job row.
type IngestInput struct {
	ResearchItemID string `json:"research_item_id"`
	SourceURL      string `json:"source_url"`
}

// CreateIngestJob records an ingest job for a research item and enqueues it.
func CreateIngestJob(ctx context.Context, userID uint64, item *model.ResearchItem, sourceURL string) (*model.MediaJob, error) {
	if err := ValidateIngestSourceURL(sourceURL); err != nil {
		return nil, err
	}
	input, err := json.Marshal(IngestInput{
		ResearchItemID: item.ID,
		SourceURL:      sourceURL,
	})
	if err != nil {
		return nil, err
	}
	job := &model.MediaJob{
		ID:             utils.GetToken(),
		UserID:         userID,
		Type:           model.JobTypeIngestResearchFile,
		ResearchItemID: item.ID,
		Input:          string(input),
		Status:         model.JobStatusQueued,
	}
	if err := repo.Db.Create(job).Error; err != nil {
		return nil, err
	}

	msg := IngestMessage{JobID: job.ID, Attempt: 0}
	body, err := json.Marshal(msg)
	if err != nil {
		markIngestFailed(job.ID, item.ID, err)
		return nil, err
	}
	publisher, err := mq.GetPublisher()
	if err != nil {
		markIngestFailed(job.ID, item.ID, err)
		return nil, err
	}
	if err := publisher.PublishIngest(ctx, body); err != nil {
		markIngestFailed(job.ID, item.ID, err)
		return nil, err
	}
	return job, nil
}

// ProcessIngestJob executes one ingest job. The claim and the finish are
// both guarded updates, so a cancellation landing at any point between
// them wins and no catalog write happens for the dead item.
func ProcessIngestJob(ctx context.Context, jobID string) error {
	var job model.MediaJob
	if err := repo.Db.Where("id = ?", jobID).First(&job).Error; err != nil {
		return err
	}
	switch job.Status {
	case model.JobStatusDone, model.JobStatusCancelled, model.JobStatusFailed:
		return nil
	}

	startedAt := time.Now()
	claim := repo.Db.Model(&model.MediaJob{}).
		Where("id = ? AND status = ?", jobID, model.JobStatusQueued).
		Updates(map[string]interface{}{
			"status":     model.JobStatusRunning,
			"started_at": &startedAt,
			"error_msg":  "",
		})
	if claim.Error != nil {
		return claim.Error
	}
	if claim.RowsAffected == 0 {
		// cancelled, or another worker got here first
		return nil
	}

	acquireJobLease(ctx, jobID)
	defer releaseJobLease(ctx, jobID)

	var input IngestInput
	if err := json.Unmarshal([]byte(job.Input), &input); err != nil {
		markIngestFailed(jobID, job.ResearchItemID, err)
		return nil
	}

	var item model.ResearchItem
	if err := repo.Db.Select("id", "file_id").
		Where("id = ?", input.ResearchItemID).
		First(&item).Error; err != nil {
		// the item is gone; this job has nothing left to do
		markJobStatus(jobID, model.JobStatusCancelled, "research item deleted")
		return nil
	}
	if item.FileID == nil {
		markIngestFailed(jobID, item.ID, fmt.Errorf("research item has no file"))
		return nil
	}

	key := fmt.Sprintf("research/%s/%s", *item.FileID, utils.GetToken())
	size, contentType, err := DownloadToStorage(ctx, input.SourceURL, key)
	if err != nil {
		return err
	}

	finishedAt := time.Now()
	finish := repo.Db.Model(&model.MediaJob{}).
		Where("id = ? AND status = ?", jobID, model.JobStatusRunning).
		Updates(map[string]interface{}{
			"status":      model.JobStatusDone,
			"finished_at": &finishedAt,
		})
	if finish.Error != nil {
		return finish.Error
	}
	if finish.RowsAffected == 0 {
		// cancelled mid-flight: drop the object we just uploaded
		removeUploaded(ctx, key)
		return nil
	}

	fileUpdate := repo.Db.Model(&model.ResearchFile{}).
		Where("id = ?", *item.FileID).
		Updates(map[string]interface{}{
			"r2_key":       key,
			"size":         size,
			"content_type": contentType,
		})
	if fileUpdate.Error != nil {
		return fileUpdate.Error
	}
	if fileUpdate.RowsAffected == 0 {
		// the file row was reaped while we worked; don't orphan the blob
		removeUploaded(ctx, key)
		return nil
	}

	return service.MarkResearchItemStatus(item.ID, model.ResearchItemStatusReady)
}

// RequeueIngestJob puts a job back in the queued state before a delayed
// retry redelivers it.
func RequeueIngestJob(jobID string, attempt int, procErr error) error {
	return repo.Db.Model(&model.MediaJob{}).
		Where("id = ? AND status = ?", jobID, model.JobStatusRunning).
		Updates(map[string]interface{}{
			"status":    model.JobStatusQueued,
			"attempt":   attempt,
			"error_msg": procErr.Error(),
		}).Error
}

// MarkIngestJobFailed marks a job failed and flips its item to failed.
func MarkIngestJobFailed(jobID, itemID string, procErr error) {
	markIngestFailed(jobID, itemID, procErr)
}

func markIngestFailed(jobID, itemID string, procErr error) {
	markJobStatus(jobID, model.JobStatusFailed, procErr.Error())
	if itemID != "" {
		_ = service.MarkResearchItemStatus(itemID, model.ResearchItemStatusFailed)
	}
}

func markJobStatus(jobID, status, errMsg string) {
	finishedAt := time.Now()
	_ = repo.Db.Model(&model.MediaJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":      status,
			"error_msg":   errMsg,
			"finished_at": &finishedAt,
		}).Error
}

func acquireJobLease(ctx context.Context, jobID string) {
	if repo.Redis == nil {
		return
	}
	ttl := config.AppConfig.IngestLeaseTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	_ = repo.Redis.Set(ctx, repo.JobLeaseKeyPrefix+jobID, "1", ttl).Err()
}

func releaseJobLease(ctx context.Context, jobID string) {
	if repo.Redis == nil {
		return
	}
	_ = repo.Redis.Del(ctx, repo.JobLeaseKeyPrefix+jobID).Err()
}

func removeUploaded(ctx context.Context, key string) {
	if storage.Default == nil {
		return
	}
	_ = storage.Default.RemoveObject(ctx, key)
}
