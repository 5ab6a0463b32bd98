package service

import (
	"SwipeVault/internal/repo"
	"SwipeVault/model"
	"SwipeVault/utils"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrResearchItemNotFound = errors.New("research item not found")

const researchListCacheTTL = 5 * time.Minute

// CreateResearchItemInput carries the creation variants: attach an existing
// shared file, schedule an ingest from a source URL, or neither.
type CreateResearchItemInput struct {
	Title     string
	Notes     string
	FileID    *string
	SourceURL string
	FileName  string
}

// CreateResearchItem creates the item row and, when attaching by file id,
// validates the referenced file. Ingest scheduling happens in the task
// layer once the rows exist.
func CreateResearchItem(ctx context.Context, userID uint64, in CreateResearchItemInput) (*model.ResearchItem, error) {
	item := &model.ResearchItem{
		ID:     utils.GetToken(),
		UserID: userID,
		Title:  in.Title,
		Notes:  in.Notes,
		Status: model.ResearchItemStatusReady,
	}

	switch {
	case in.FileID != nil:
		if _, err := GetResearchFile(*in.FileID); err != nil {
			return nil, err
		}
		item.FileID = in.FileID
	case in.SourceURL != "":
		file := &model.ResearchFile{
			ID:       utils.GetToken(),
			FileName: in.FileName,
		}
		if err := repo.Db.Create(file).Error; err != nil {
			return nil, err
		}
		item.FileID = &file.ID
		item.Status = model.ResearchItemStatusProcessing
	}

	if err := repo.Db.Create(item).Error; err != nil {
		return nil, err
	}
	_ = utils.InvalidateResearchListCache(ctx, userID)
	return item, nil
}

// GetResearchItem loads one item with its file.
func GetResearchItem(userID uint64, id string) (*model.ResearchItem, error) {
	var item model.ResearchItem
	err := repo.Db.Preload("File").
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResearchItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// ListResearchItems lists a user's items, newest first.
func ListResearchItems(ctx context.Context, userID uint64, page, pageSize int) ([]model.ResearchItem, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	if cached, ok := utils.GetResearchListFromCache(ctx, userID, page, pageSize); ok {
		return cached.Items, cached.Total, nil
	}

	var total int64
	if err := repo.Db.Model(&model.ResearchItem{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []model.ResearchItem
	err := repo.Db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	_ = utils.SetResearchListToCache(ctx, userID, page, pageSize, &utils.ResearchListCache{
		Items: items,
		Total: total,
	}, researchListCacheTTL)
	return items, total, nil
}

// MarkResearchItemStatus updates an item's status.
func MarkResearchItemStatus(id, status string) error {
	return repo.Db.Model(&model.ResearchItem{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// DeleteResearchItem removes one research item and everything only it still
// needs: pending ingest jobs are cancelled first, then the item row goes,
// then the shared file is reaped if this was its last reference.
//
// The sequence is deliberately not one cross-store transaction; the blob
// store cannot join it. Any failure after the item row deletion leaves the
// catalog safe: the file may linger with zero references, and the sweep (or
// a repeated reap) finishes the job.
func DeleteResearchItem(ctx context.Context, userID uint64, id string) error {
	var item model.ResearchItem
	err := repo.Db.Select("id", "file_id").
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResearchItemNotFound
		}
		return err
	}

	if _, err := CancelPendingIngestJobs(item.ID); err != nil {
		return err
	}

	if err := repo.Db.Where("id = ?", item.ID).Delete(&model.ResearchItem{}).Error; err != nil {
		return err
	}

	if item.FileID != nil {
		if _, err := ReapResearchFile(ctx, *item.FileID); err != nil {
			return err
		}
	}

	_ = utils.InvalidateResearchListCache(ctx, userID)
	return nil
}
