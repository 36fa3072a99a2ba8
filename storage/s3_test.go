package storage

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]time.Time
	bodies  map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]time.Time{}, bodies: map[string][]byte{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = time.Now()
	f.bodies[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &s3.ListObjectsV2Output{}
	for key, mod := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key), LastModified: aws.Time(mod)})
		}
	}
	return out, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	delete(f.bodies, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestUploadFile(t *testing.T) {
	api := newFakeS3()
	b := &Bucket{API: api, Name: "learn", BaseURL: "https://s3.example.com/", Logger: zap.NewNop()}

	link, err := b.UploadFile(context.Background(), "exports/a.json.gz", []byte("data"), "application/gzip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link != "https://s3.example.com/learn/exports/a.json.gz" {
		t.Errorf("unexpected link %q", link)
	}
	if string(api.bodies["exports/a.json.gz"]) != "data" {
		t.Error("body not stored")
	}
}

func TestRotateKeepsNewest(t *testing.T) {
	api := newFakeS3()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		api.objects["backups/b"+string(rune('0'+i))] = base.Add(time.Duration(i) * time.Hour)
	}
	api.objects["exports/other"] = base
	b := &Bucket{API: api, Name: "learn", Logger: zap.NewNop()}

	deleted, err := b.Rotate(context.Background(), "backups/", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sort.Strings(deleted)
	if strings.Join(deleted, ",") != "backups/b0,backups/b1,backups/b2" {
		t.Errorf("unexpected deletions: %v", deleted)
	}
	if _, ok := api.objects["exports/other"]; !ok {
		t.Error("object outside prefix was deleted")
	}
}
