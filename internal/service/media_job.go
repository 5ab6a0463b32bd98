package service

import (
	"SwipeVault/internal/repo"
	"SwipeVault/model"
	"time"
)

// CancelPendingIngestJobs marks every queued or running ingest job for a
// research item cancelled. Terminal jobs are historical records and stay
// untouched. Runs as one guarded UPDATE so it composes with concurrent
// worker claims: whichever statement lands first wins.
func CancelPendingIngestJobs(itemID string) (int64, error) {
	now := time.Now()
	res := repo.Db.Model(&model.MediaJob{}).
		Where("research_item_id = ? AND type = ? AND status IN ?",
			itemID,
			model.JobTypeIngestResearchFile,
			[]string{model.JobStatusQueued, model.JobStatusRunning},
		).
		Updates(map[string]interface{}{
			"status":      model.JobStatusCancelled,
			"finished_at": &now,
		})
	return res.RowsAffected, res.Error
}

// ListMediaJobs lists a user's jobs, newest first.
func ListMediaJobs(userID uint64, limit int) ([]model.MediaJob, error) {
	if limit <= 0 {
		limit = 20
	}
	var jobs []model.MediaJob
	err := repo.Db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}
