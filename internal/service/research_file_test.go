package service_test

import (
	"SwipeVault/internal/repo"
	"SwipeVault/internal/service"
	"SwipeVault/model"
	"SwipeVault/utils"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSharedFileSurvivesUntilLastReference(t *testing.T) {
	cleanTables(t)
	fake := useFakeStore(t)

	user := createTestUser(t, "shared_file")
	file := createTestFile(t, "research/shared/obj-1")
	itemA := createTestItem(t, user.ID, &file.ID)
	itemB := createTestItem(t, user.ID, &file.ID)

	ctx := context.Background()
	if err := service.DeleteResearchItem(ctx, user.ID, itemA.ID); err != nil {
		t.Fatalf("delete first item failed: %v", err)
	}

	// one reference remains: file row and blob must survive
	if _, err := service.GetResearchFile(file.ID); err != nil {
		t.Fatalf("file row should still exist: %v", err)
	}
	if n := fake.removedCount(file.R2Key); n != 0 {
		t.Fatalf("blob removed %d times while still referenced", n)
	}

	if err := service.DeleteResearchItem(ctx, user.ID, itemB.ID); err != nil {
		t.Fatalf("delete second item failed: %v", err)
	}

	if _, err := service.GetResearchFile(file.ID); !errors.Is(err, service.ErrResearchFileNotFound) {
		t.Fatalf("file row should be gone, got %v", err)
	}
	if n := fake.removedCount(file.R2Key); n != 1 {
		t.Fatalf("blob should be removed exactly once, got %d", n)
	}
}

func TestReapMissingFileRowIsNoop(t *testing.T) {
	cleanTables(t)
	fake := useFakeStore(t)

	deleted, err := service.ReapResearchFile(context.Background(), utils.GetToken())
	if err != nil {
		t.Fatalf("reap of absent row must not fail: %v", err)
	}
	if deleted {
		t.Fatal("reap of absent row must report nothing deleted")
	}
	if fake.totalCalls() != 0 {
		t.Fatal("reap of absent row must not touch the blob store")
	}
}

func TestReapSwallowsBlobDeleteFailure(t *testing.T) {
	cleanTables(t)
	fake := useFakeStore(t)
	fake.removeErr = errors.New("r2: connection reset")

	file := createTestFile(t, "research/fail/obj-2")

	deleted, err := service.ReapResearchFile(context.Background(), file.ID)
	if err != nil {
		t.Fatalf("blob failure must not surface: %v", err)
	}
	if !deleted {
		t.Fatal("row should have been deleted despite the blob failure")
	}
	if _, err := service.GetResearchFile(file.ID); !errors.Is(err, service.ErrResearchFileNotFound) {
		t.Fatalf("file row should be gone, got %v", err)
	}
	if n := fake.removedCount(file.R2Key); n != 1 {
		t.Fatalf("blob delete should have been attempted once, got %d", n)
	}
}

func TestReapSkipsBlobWhenNoKeyStored(t *testing.T) {
	cleanTables(t)
	fake := useFakeStore(t)

	file := createTestFile(t, "")

	deleted, err := service.ReapResearchFile(context.Background(), file.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !deleted {
		t.Fatal("row without a blob should still be reaped")
	}
	if fake.totalCalls() != 0 {
		t.Fatal("no blob key means no blob store call")
	}
}

func TestSweepOrphanedFiles(t *testing.T) {
	cleanTables(t)
	fake := useFakeStore(t)

	user := createTestUser(t, "sweep")
	orphan := createTestFile(t, "research/orphan/obj-3")
	kept := createTestFile(t, "research/kept/obj-4")
	createTestItem(t, user.ID, &kept.ID)

	reaped, err := service.SweepOrphanedFiles(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if reaped != 1 {
		t.Fatalf("expect 1 reaped, got %d", reaped)
	}
	if _, err := service.GetResearchFile(orphan.ID); !errors.Is(err, service.ErrResearchFileNotFound) {
		t.Fatal("orphan file should have been reaped")
	}
	if _, err := service.GetResearchFile(kept.ID); err != nil {
		t.Fatalf("referenced file must survive the sweep: %v", err)
	}
	if n := fake.removedCount(kept.R2Key); n != 0 {
		t.Fatalf("referenced blob removed %d times", n)
	}
}

func TestSignResearchFileURL(t *testing.T) {
	cleanTables(t)
	fake := useFakeStore(t)

	file := createTestFile(t, "research/sign/obj-5")
	url, err := service.SignResearchFileURL(context.Background(), file)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if !strings.Contains(url, file.R2Key) {
		t.Fatalf("signed url should reference the object key, got %s", url)
	}
	if len(fake.presigned) != 1 {
		t.Fatalf("expect one presign call, got %d", len(fake.presigned))
	}

	file.R2Key = ""
	if _, err := service.SignResearchFileURL(context.Background(), file); !errors.Is(err, service.ErrResearchFileNotFound) {
		t.Fatalf("expect not-found for keyless file, got %v", err)
	}
}

func TestCountFileReferences(t *testing.T) {
	cleanTables(t)

	user := createTestUser(t, "refcount")
	file := createTestFile(t, "research/count/obj-6")
	createTestItem(t, user.ID, &file.ID)
	createTestItem(t, user.ID, &file.ID)

	refs, err := service.CountFileReferences(file.ID)
	if err != nil {
		t.Fatal(err)
	}
	if refs != 2 {
		t.Fatalf("expect 2 references, got %d", refs)
	}

	if err := repo.Db.Where("file_id = ?", file.ID).Delete(&model.ResearchItem{}).Error; err != nil {
		t.Fatal(err)
	}
	refs, err = service.CountFileReferences(file.ID)
	if err != nil {
		t.Fatal(err)
	}
	if refs != 0 {
		t.Fatalf("expect 0 references, got %d", refs)
	}
}
