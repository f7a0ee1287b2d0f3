package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/minio/minio-go/v7"
)

// SnapshotStore archives project blobs to object storage. Every save produces
// a timestamped copy, so a broken edit or a bad generation can be rolled back.
// A nil client disables archiving; callers treat that as best-effort.
type SnapshotStore struct {
	client *minio.Client
	bucket string
}

// Snapshot identifies one archived copy.
type Snapshot struct {
	Key       string    `json:"key"`
	ProjectID string    `json:"project_id"`
	SavedAt   time.Time `json:"saved_at"`
	Size      int64     `json:"size"`
}

func NewSnapshotStore(client *minio.Client, bucket string) *SnapshotStore {
	return &SnapshotStore{client: client, bucket: bucket}
}

// Enabled reports whether object storage is configured.
func (s *SnapshotStore) Enabled() bool {
	return s.client != nil
}

// Put archives one serialized model blob.
func (s *SnapshotStore) Put(ctx context.Context, projectID string, blob []byte) (string, error) {
	if s.client == nil {
		return "", nil
	}
	key := fmt.Sprintf("projects/%s/%s.json", projectID, time.Now().UTC().Format("20060102T150405.000"))
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(blob), int64(len(blob)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("archive snapshot: %w", err)
	}
	return key, nil
}

// List returns the archived snapshots of a project, newest first.
func (s *SnapshotStore) List(ctx context.Context, projectID string) ([]Snapshot, error) {
	if s.client == nil {
		return nil, nil
	}
	prefix := fmt.Sprintf("projects/%s/", projectID)
	var out []Snapshot
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list snapshots: %w", obj.Err)
		}
		out = append(out, Snapshot{
			Key:       obj.Key,
			ProjectID: projectID,
			SavedAt:   obj.LastModified,
			Size:      obj.Size,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SavedAt.After(out[j].SavedAt)
	})
	return out, nil
}

// Get fetches one archived blob by key.
func (s *SnapshotStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.client == nil {
		return nil, fmt.Errorf("snapshot store not configured")
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer obj.Close()
	blob, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return blob, nil
}
