package service

import (
	"SwipeVault/config"
	"SwipeVault/internal/repo"
	"SwipeVault/internal/storage"
	"SwipeVault/model"
	"SwipeVault/utils"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrSwipeNotReady = errors.New("swipe image not ready")

func signedURLTTL() time.Duration {
	ttl := config.AppConfig.SignedURLTTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return ttl
}

// BuildSwipeKey builds the R2 object key for a swipe's media.
func BuildSwipeKey(userID uint64, swipeID string) string {
	return fmt.Sprintf("swipes/%d/%s", userID, swipeID)
}

// CreateSwipe stores the uploaded media and creates the swipe row.
func CreateSwipe(
	ctx context.Context,
	userID uint64,
	title string,
	platform string,
	sourceURL string,
	reader io.Reader,
	size int64,
	contentType string,
) (*model.Swipe, error) {
	if storage.Default == nil {
		return nil, fmt.Errorf("storage not initialized")
	}
	swipe := &model.Swipe{
		ID:          utils.GetToken(),
		UserID:      userID,
		Title:       title,
		Platform:    platform,
		SourceURL:   sourceURL,
		ContentType: contentType,
		Status:      model.SwipeStatusReady,
	}
	swipe.R2Key = BuildSwipeKey(userID, swipe.ID)

	if err := storage.Default.PutObject(ctx, swipe.R2Key, reader, size, storage.PutOptions{
		ContentType: contentType,
	}); err != nil {
		return nil, err
	}
	if err := repo.Db.Create(swipe).Error; err != nil {
		// the row failed, don't keep an unreachable object around
		_ = storage.Default.RemoveObject(ctx, swipe.R2Key)
		return nil, err
	}
	return swipe, nil
}

// GetSwipe loads one swipe.
func GetSwipe(userID uint64, id string) (*model.Swipe, error) {
	var swipe model.Swipe
	err := repo.Db.Where("id = ? AND user_id = ?", id, userID).First(&swipe).Error
	if err != nil {
		return nil, err
	}
	return &swipe, nil
}

// ListSwipes lists a user's swipes, newest first.
func ListSwipes(userID uint64, limit int) ([]model.Swipe, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var swipes []model.Swipe
	err := repo.Db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&swipes).Error
	return swipes, err
}

// SwipeImageURL signs a short-lived read URL for a swipe's media. The
// ownership-scoped row lookup and the readiness gate run before the cache
// and the blob store are consulted, so a cached URL is never served to a
// caller the row lookup would have rejected, nor for a swipe that has been
// deleted or flipped back to not-ready since it was cached. The cache key
// carries the user id as well, keeping entries per-caller.
func SwipeImageURL(ctx context.Context, userID uint64, id string) (string, error) {
	swipe, err := GetSwipe(userID, id)
	if err != nil {
		return "", err
	}
	if swipe.Status != model.SwipeStatusReady || swipe.R2Key == "" {
		return "", ErrSwipeNotReady
	}
	if storage.Default == nil {
		return "", fmt.Errorf("storage not initialized")
	}

	cacheID := fmt.Sprintf("%d:%s", userID, id)
	if url, ok := utils.GetSignedURLFromCache(ctx, utils.CacheKeySwipeURL, cacheID); ok {
		return url, nil
	}

	ttl := signedURLTTL()
	url, err := storage.Default.PresignedGet(ctx, swipe.R2Key, ttl)
	if err != nil {
		return "", err
	}
	if err := utils.SetSignedURLToCache(ctx, utils.CacheKeySwipeURL, cacheID, url, ttl/2); err != nil {
		logrus.WithError(err).WithField("swipe_id", id).Debug("signed url cache write failed")
	}
	return url, nil
}

// SwipeTranscripts loads the transcripts of the given ready swipes,
// preserving request order and skipping swipes the user does not own.
func SwipeTranscripts(userID uint64, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var swipes []model.Swipe
	err := repo.Db.Where("user_id = ? AND id IN ? AND status = ?", userID, ids, model.SwipeStatusReady).
		Find(&swipes).Error
	if err != nil {
		return nil, err
	}
	byID := make(map[string]string, len(swipes))
	for _, s := range swipes {
		if s.Transcript != "" {
			byID[s.ID] = s.Transcript
		}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// IsSwipeNotFound reports whether an error is the missing-row case.
func IsSwipeNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
