package service_test

import (
	"SwipeVault/internal/repo"
	"SwipeVault/internal/service"
	"SwipeVault/model"
	"SwipeVault/utils"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func createTestSwipe(t *testing.T, userID uint64, status, r2Key, transcript string) *model.Swipe {
	t.Helper()
	swipe := &model.Swipe{
		ID:         utils.GetToken(),
		UserID:     userID,
		Title:      "facebook hook ad",
		Platform:   "facebook",
		R2Key:      r2Key,
		Transcript: transcript,
		Status:     status,
	}
	if err := repo.Db.Create(swipe).Error; err != nil {
		t.Fatal(err)
	}
	return swipe
}

func TestSwipeImageURLNotReady(t *testing.T) {
	cleanTables(t)
	fake := useFakeStore(t)

	user := createTestUser(t, "swipe_not_ready")
	swipe := createTestSwipe(t, user.ID, model.SwipeStatusProcessing, "swipes/1/abc", "")

	_, err := service.SwipeImageURL(context.Background(), user.ID, swipe.ID)
	if !errors.Is(err, service.ErrSwipeNotReady) {
		t.Fatalf("expect not ready, got %v", err)
	}
	// the readiness gate sits in front of the blob store
	if fake.totalCalls() != 0 {
		t.Fatal("unready swipe must not reach the blob store")
	}
}

func TestSwipeImageURLReadyWithoutKey(t *testing.T) {
	cleanTables(t)
	fake := useFakeStore(t)

	user := createTestUser(t, "swipe_no_key")
	swipe := createTestSwipe(t, user.ID, model.SwipeStatusReady, "", "")

	_, err := service.SwipeImageURL(context.Background(), user.ID, swipe.ID)
	if !errors.Is(err, service.ErrSwipeNotReady) {
		t.Fatalf("ready row without a key is still not ready, got %v", err)
	}
	if fake.totalCalls() != 0 {
		t.Fatal("keyless swipe must not reach the blob store")
	}
}

func TestSwipeImageURLReady(t *testing.T) {
	cleanTables(t)
	fake := useFakeStore(t)

	user := createTestUser(t, "swipe_ready")
	swipe := createTestSwipe(t, user.ID, model.SwipeStatusReady, "swipes/1/ready", "")

	url, err := service.SwipeImageURL(context.Background(), user.ID, swipe.ID)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if !strings.Contains(url, swipe.R2Key) {
		t.Fatalf("url should reference the object key, got %s", url)
	}
	if len(fake.presigned) != 1 {
		t.Fatalf("expect one presign call, got %d", len(fake.presigned))
	}
}

func TestSwipeImageURLScopedToOwner(t *testing.T) {
	cleanTables(t)
	fake := useFakeStore(t)

	owner := createTestUser(t, "swipe_owner")
	intruder := createTestUser(t, "swipe_intruder")
	swipe := createTestSwipe(t, owner.ID, model.SwipeStatusReady, "swipes/1/private", "")

	ctx := context.Background()
	if _, err := service.SwipeImageURL(ctx, owner.ID, swipe.ID); err != nil {
		t.Fatalf("owner sign failed: %v", err)
	}

	// another user asking for the same id right after the owner signed must
	// hit the ownership filter, not a cached URL
	_, err := service.SwipeImageURL(ctx, intruder.ID, swipe.ID)
	if !service.IsSwipeNotFound(err) {
		t.Fatalf("foreign swipe should look like not found, got %v", err)
	}
	if len(fake.presigned) != 1 {
		t.Fatalf("only the owner's request should presign, got %d", len(fake.presigned))
	}
}

func TestSwipeImageURLAfterStatusFlip(t *testing.T) {
	cleanTables(t)
	useFakeStore(t)

	user := createTestUser(t, "swipe_flip")
	swipe := createTestSwipe(t, user.ID, model.SwipeStatusReady, "swipes/1/flip", "")

	ctx := context.Background()
	if _, err := service.SwipeImageURL(ctx, user.ID, swipe.ID); err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if err := repo.Db.Model(&model.Swipe{}).Where("id = ?", swipe.ID).
		Update("status", model.SwipeStatusProcessing).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := service.SwipeImageURL(ctx, user.ID, swipe.ID); !errors.Is(err, service.ErrSwipeNotReady) {
		t.Fatalf("no-longer-ready swipe must not serve a URL, got %v", err)
	}

	if err := repo.Db.Where("id = ?", swipe.ID).Delete(&model.Swipe{}).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := service.SwipeImageURL(ctx, user.ID, swipe.ID); !service.IsSwipeNotFound(err) {
		t.Fatalf("deleted swipe must not serve a URL, got %v", err)
	}
}

func TestSwipeImageURLNotFound(t *testing.T) {
	cleanTables(t)
	useFakeStore(t)

	user := createTestUser(t, "swipe_missing")
	_, err := service.SwipeImageURL(context.Background(), user.ID, "zz")
	if !service.IsSwipeNotFound(err) {
		t.Fatalf("expect not found, got %v", err)
	}
}

func TestCreateSwipeStoresBlobAndRow(t *testing.T) {
	cleanTables(t)
	fake := useFakeStore(t)

	user := createTestUser(t, "swipe_create")
	body := []byte("fake-image-bytes")
	swipe, err := service.CreateSwipe(
		context.Background(),
		user.ID,
		"tiktok ugc ad",
		"tiktok",
		"https://www.tiktok.com/@brand/video/123",
		bytes.NewReader(body),
		int64(len(body)),
		"image/png",
	)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if swipe.R2Key == "" {
		t.Fatal("created swipe should carry its object key")
	}
	if _, ok := fake.objects[swipe.R2Key]; !ok {
		t.Fatal("blob should have been uploaded")
	}
	if _, err := service.GetSwipe(user.ID, swipe.ID); err != nil {
		t.Fatalf("row should exist: %v", err)
	}
}

func TestSwipeTranscriptsPreserveRequestOrder(t *testing.T) {
	cleanTables(t)

	user := createTestUser(t, "swipe_transcripts")
	first := createTestSwipe(t, user.ID, model.SwipeStatusReady, "swipes/1/a", "hook one")
	second := createTestSwipe(t, user.ID, model.SwipeStatusReady, "swipes/1/b", "hook two")
	pending := createTestSwipe(t, user.ID, model.SwipeStatusProcessing, "", "not yet")

	got, err := service.SwipeTranscripts(user.ID, []string{second.ID, pending.ID, first.ID})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"hook two", "hook one"}
	if len(got) != len(want) {
		t.Fatalf("expect %d transcripts, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("transcript %d: expect %q, got %q", i, want[i], got[i])
		}
	}
}
