package service

import (
	"SwipeVault/internal/repo"
	"SwipeVault/internal/storage"
	"SwipeVault/model"
	"SwipeVault/utils"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"gorm.io/gorm"
)

var ErrResearchFileNotFound = errors.New("research file not found")

// GetResearchFile loads a research file row.
func GetResearchFile(fileID string) (*model.ResearchFile, error) {
	var file model.ResearchFile
	if err := repo.Db.Where("id = ?", fileID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResearchFileNotFound
		}
		return nil, err
	}
	return &file, nil
}

// CountFileReferences counts research items still pointing at a file.
func CountFileReferences(fileID string) (int64, error) {
	var refs int64
	err := repo.Db.Model(&model.ResearchItem{}).
		Where("file_id = ?", fileID).
		Count(&refs).Error
	return refs, err
}

// DeleteBlob removes the underlying object for a key.
func DeleteBlob(ctx context.Context, key string) error {
	if storage.Default == nil {
		return fmt.Errorf("storage not initialized")
	}
	return storage.Default.RemoveObject(ctx, key)
}

// ReapResearchFile deletes a file row and its blob once nothing references
// it anymore. The caller has already removed one referencing item.
//
// The row goes first: a concurrent reader then sees "file gone" consistently
// instead of a live row whose blob has vanished underneath it. An absent row
// means another reap got here first, which is a no-op, and blob deletion
// failure is logged and swallowed: the catalog stays consistent and the
// orphaned object only costs storage until a sweep retries it.
func ReapResearchFile(ctx context.Context, fileID string) (bool, error) {
	refs, err := CountFileReferences(fileID)
	if err != nil {
		return false, err
	}
	if refs > 0 {
		return false, nil
	}

	var file model.ResearchFile
	if err := repo.Db.Where("id = ?", fileID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := repo.Db.Where("id = ?", fileID).Delete(&model.ResearchFile{}).Error; err != nil {
		return false, err
	}

	if file.R2Key != "" {
		if err := DeleteBlob(ctx, file.R2Key); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"file_id": fileID,
				"r2_key":  file.R2Key,
			}).Warn("blob delete failed, object orphaned until next sweep")
		}
	}
	return true, nil
}

// SweepOrphanedFiles re-reaps files that no item references anymore. It
// recovers from a crash between an item deletion and its reap, and retries
// blob deletions that previously failed before the row went away.
func SweepOrphanedFiles(ctx context.Context) (int, error) {
	var ids []string
	err := repo.Db.Model(&model.ResearchFile{}).
		Where("NOT EXISTS (SELECT 1 FROM research_item WHERE research_item.file_id = research_file.id)").
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}

	reaped := 0
	for _, id := range ids {
		deleted, err := ReapResearchFile(ctx, id)
		if err != nil {
			logrus.WithError(err).WithField("file_id", id).Warn("sweep reap failed")
			continue
		}
		if deleted {
			reaped++
		}
	}
	return reaped, nil
}

// SignResearchFileURL returns a presigned download URL for a stored file.
func SignResearchFileURL(ctx context.Context, file *model.ResearchFile) (string, error) {
	if file.R2Key == "" {
		return "", ErrResearchFileNotFound
	}
	if storage.Default == nil {
		return "", fmt.Errorf("storage not initialized")
	}
	if url, ok := utils.GetSignedURLFromCache(ctx, utils.CacheKeyResearchFileURL, file.ID); ok {
		return url, nil
	}
	ttl := signedURLTTL()
	url, err := storage.Default.PresignedGetWithFilename(
		ctx,
		file.R2Key,
		ttl,
		utils.SanitizeHeaderFilename(file.FileName),
		file.ContentType,
	)
	if err != nil {
		return "", err
	}
	if err := utils.SetSignedURLToCache(ctx, utils.CacheKeyResearchFileURL, file.ID, url, ttl/2); err != nil {
		logrus.WithError(err).WithField("file_id", file.ID).Debug("signed url cache write failed")
	}
	return url, nil
}
