package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"path"
	"sort"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dollpublish/dollpublish/internal/config"
	"github.com/dollpublish/dollpublish/internal/document"
	"github.com/dollpublish/dollpublish/internal/document/repository"
	"github.com/dollpublish/dollpublish/internal/render"
)

// objectAPI is the subset of *minio.Client the mirror needs.
type objectAPI interface {
	PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
}

// MinIOMirror copies published documents into a bucket using the same key layout as the
// data directory: <owner>/<id>/metadata.json, content.md and attachments/<name>.
type MinIOMirror struct {
	client objectAPI
	bucket string
}

// NewMinIOMirror connects to MinIO and ensures the bucket exists.
func NewMinIOMirror(cfg config.MinIOConfig) (*MinIOMirror, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		// ignore "already exists" style errors
		exist, xerr := mc.BucketExists(ctx, cfg.Bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return &MinIOMirror{client: mc, bucket: cfg.Bucket}, nil
}

type object struct {
	key         string
	body        []byte
	contentType string
}

// documentObjects lays out doc as bucket objects, attachments in name order.
func documentObjects(owner, id string, doc *document.Document) ([]object, error) {
	meta, err := repository.EncodeMetadata(doc)
	if err != nil {
		return nil, err
	}
	prefix := path.Join(owner, id)
	objs := []object{
		{key: prefix + "/metadata.json", body: meta, contentType: "application/json"},
		{key: prefix + "/content.md", body: []byte(doc.Content), contentType: "text/markdown; charset=utf-8"},
	}
	names := make([]string, 0, len(doc.Attachments))
	for name := range doc.Attachments {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		raw, err := base64.StdEncoding.DecodeString(doc.Attachments[name])
		if err != nil {
			return nil, fmt.Errorf("attachment %s: %w", name, err)
		}
		objs = append(objs, object{
			key:         prefix + "/attachments/" + name,
			body:        raw,
			contentType: render.TypeByFilename(name),
		})
	}
	return objs, nil
}

// MirrorDocument uploads every file of doc. Attachments already in the bucket but not in
// doc are left alone, matching the data directory.
func (m *MinIOMirror) MirrorDocument(ctx context.Context, owner, id string, doc *document.Document) error {
	objs, err := documentObjects(owner, id, doc)
	if err != nil {
		return err
	}
	for _, o := range objs {
		_, err := m.client.PutObject(ctx, m.bucket, o.key, bytes.NewReader(o.body), int64(len(o.body)),
			minio.PutObjectOptions{ContentType: o.contentType})
		if err != nil {
			return fmt.Errorf("put %s: %w", o.key, err)
		}
	}
	return nil
}

// RemoveDocument deletes every object under <owner>/<id>/.
func (m *MinIOMirror) RemoveDocument(ctx context.Context, owner, id string) error {
	prefix := path.Join(owner, id) + "/"
	for info := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return fmt.Errorf("list %s: %w", prefix, info.Err)
		}
		if err := m.client.RemoveObject(ctx, m.bucket, info.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("remove %s: %w", info.Key, err)
		}
	}
	return nil
}
