package services

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"learnhub/models"
	"learnhub/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memoryS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	mod     map[string]time.Time
}

func newMemoryS3() *memoryS3 {
	return &memoryS3{objects: map[string][]byte{}, mod: map[string]time.Time{}}
}

func (m *memoryS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[aws.ToString(in.Key)] = data
	m.mod[aws.ToString(in.Key)] = time.Now()
	return &s3.PutObjectOutput{}, nil
}

func (m *memoryS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := &s3.ListObjectsV2Output{}
	for key := range m.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key), LastModified: aws.Time(m.mod[key])})
		}
	}
	return out, nil
}

func (m *memoryS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, aws.ToString(in.Key))
	delete(m.mod, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestExportProject(t *testing.T) {
	f := newFixture(t, Sources{})
	ctx := context.Background()
	owner := uuid.New()
	project := seedProject(t, f, owner)
	upsertResource[models.Repository](ctx, f.db, repository(project.ID, "1", "repo", 3))

	api := newMemoryS3()
	bucket := &storage.Bucket{API: api, Name: "learn", BaseURL: "https://s3.example.com", Logger: zap.NewNop()}
	svc := NewExportService(testConfig(), f.db, bucket, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	res, err := svc.ExportProject(ctx, owner, project.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	wantKey := "exports/" + owner.String() + "/" + project.ID.String() + "-2024-05-06T07-08-09Z.json.gz"
	if res.Key != wantKey {
		t.Errorf("unexpected key %q", res.Key)
	}

	zr, err := gzip.NewReader(bytes.NewReader(api.objects[wantKey]))
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	var snap ProjectSnapshot
	if err := json.NewDecoder(zr).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Project.ID != project.ID || len(snap.Repositories) != 1 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	if _, err := svc.ExportProject(ctx, uuid.New(), project.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign project, got %v", err)
	}
}

func TestExportWithoutBucket(t *testing.T) {
	svc := NewExportService(testConfig(), newTestDB(t), nil, zap.NewNop())
	if _, err := svc.ExportProject(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if _, err := svc.BackupAll(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestBackupAllRotates(t *testing.T) {
	f := newFixture(t, Sources{})
	seedProject(t, f, uuid.New())

	api := newMemoryS3()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, key := range []string{"backups/old-1.json.gz", "backups/old-2.json.gz", "backups/old-3.json.gz"} {
		api.objects[key] = []byte("x")
		api.mod[key] = base.Add(time.Duration(i) * time.Hour)
	}
	bucket := &storage.Bucket{API: api, Name: "learn", Logger: zap.NewNop()}
	svc := NewExportService(testConfig(), f.db, bucket, zap.NewNop())

	res, err := svc.BackupAll(context.Background())
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if _, ok := api.objects[res.Key]; !ok {
		t.Fatalf("backup %s not uploaded", res.Key)
	}
	// KeepBackups = 2: neues Backup plus das jüngste alte.
	if len(api.objects) != 2 {
		t.Errorf("expected 2 objects after rotation, got %d", len(api.objects))
	}
	if _, ok := api.objects["backups/old-3.json.gz"]; !ok {
		t.Error("newest old backup should survive")
	}
}
