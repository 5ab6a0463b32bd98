package service_test

import (
	"SwipeVault/config"
	"SwipeVault/internal/repo"
	"SwipeVault/internal/service"
	"SwipeVault/internal/storage"
	"SwipeVault/model"
	"SwipeVault/utils"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	config.InitConfig()
	repo.InitMysqlTest()
	os.Exit(m.Run())
}

// fakeStore records blob-store calls so tests can assert exactly which
// objects were touched without a live R2 endpoint.
type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	removed   []string
	presigned []string
	removeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) PutObject(ctx context.Context, key string, reader io.Reader, size int64, opts storage.PutOptions) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeStore) GetObject(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ObjectInfo{}, fmt.Errorf("object not found: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), storage.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (f *fakeStore) RemoveObject(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, key)
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) PresignedGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presigned = append(f.presigned, key)
	return "https://r2.test/" + key + "?signed=1", nil
}

func (f *fakeStore) PresignedGetWithFilename(ctx context.Context, key string, expiry time.Duration, filename, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presigned = append(f.presigned, key)
	return "https://r2.test/" + key + "?signed=1&filename=" + filename, nil
}

func (f *fakeStore) removedCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, k := range f.removed {
		if k == key {
			n++
		}
	}
	return n
}

func (f *fakeStore) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.removed) + len(f.presigned)
}

func useFakeStore(t *testing.T) *fakeStore {
	t.Helper()
	prev := storage.Default
	fake := newFakeStore()
	storage.Default = fake
	t.Cleanup(func() { storage.Default = prev })
	return fake
}

func cleanTables(t *testing.T) {
	t.Helper()
	repo.Db.Exec("SET FOREIGN_KEY_CHECKS = 0")
	tables := []string{"media_job", "research_item", "research_file", "swipe", "user_db"}
	for _, table := range tables {
		if err := repo.Db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("clean %s failed: %v", table, err)
		}
	}
	repo.Db.Exec("SET FOREIGN_KEY_CHECKS = 1")
}

func createTestUser(t *testing.T, prefix string) *model.User {
	t.Helper()
	suffix := time.Now().UnixNano()
	user := &model.User{
		UserName: fmt.Sprintf("%s_%d", prefix, suffix),
		Password: "123456",
		Email:    fmt.Sprintf("%s_%d@test.com", prefix, suffix),
		IsActive: true,
	}
	if err := service.CreateUser(user); err != nil {
		t.Fatal(err)
	}
	return user
}

func createTestFile(t *testing.T, r2Key string) *model.ResearchFile {
	t.Helper()
	file := &model.ResearchFile{
		ID:          utils.GetToken(),
		FileName:    "ad-report.pdf",
		ContentType: "application/pdf",
		Size:        2048,
		R2Key:       r2Key,
	}
	if err := repo.Db.Create(file).Error; err != nil {
		t.Fatal(err)
	}
	return file
}

func createTestItem(t *testing.T, userID uint64, fileID *string) *model.ResearchItem {
	t.Helper()
	item := &model.ResearchItem{
		ID:     utils.GetToken(),
		UserID: userID,
		Title:  "competitor teardown",
		FileID: fileID,
		Status: model.ResearchItemStatusReady,
	}
	if err := repo.Db.Create(item).Error; err != nil {
		t.Fatal(err)
	}
	return item
}
