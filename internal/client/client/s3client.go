package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/google/uuid"
)

const (
	objectRoot      = "journals"
	maxDeleteBatch  = 1000
	jsonContentType = "application/json"
)

// s3API is the subset of *s3.Client used here.
type s3API interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Options configures an S3-compatible bucket (AWS, MinIO).
type S3Options struct {
	Bucket          string
	Region          string
	BaseEndpoint    string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// S3Client stores each record as one JSON object. Object keys are
// journals/<user>/<natural key>/<id>.json, so the key index comes from a
// listing without reading any object.
type S3Client struct {
	api    s3API
	bucket string
	now    func() time.Time
}

func NewS3Client(ctx context.Context, opts S3Options) (*S3Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	cli := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})
	return newS3Client(cli, opts.Bucket), nil
}

func newS3Client(api s3API, bucket string) *S3Client {
	return &S3Client{api: api, bucket: bucket, now: func() time.Time { return time.Now().UTC() }}
}

type objectRef struct {
	key          string
	naturalKey   string
	id           string
	lastModified time.Time
}

func userPrefix(userID string) string {
	return path.Join(objectRoot, userID) + "/"
}

func objectKey(userID, naturalKey, id string) string {
	return userPrefix(userID) + naturalKey + "/" + id + ".json"
}

func parseObjectKey(prefix, key string) (objectRef, bool) {
	rest, ok := strings.CutPrefix(key, prefix)
	if !ok {
		return objectRef{}, false
	}
	nk, file, ok := strings.Cut(rest, "/")
	if !ok || nk == "" || strings.Contains(file, "/") {
		return objectRef{}, false
	}
	id, ok := strings.CutSuffix(file, ".json")
	if !ok || id == "" {
		return objectRef{}, false
	}
	return objectRef{key: key, naturalKey: nk, id: id}, true
}

func (c *S3Client) list(ctx context.Context, userID string) ([]objectRef, error) {
	prefix := userPrefix(userID)
	p := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})

	refs := make([]objectRef, 0)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, mapS3Error("list objects", err)
		}
		for _, obj := range page.Contents {
			ref, ok := parseObjectKey(prefix, aws.ToString(obj.Key))
			if !ok {
				continue
			}
			ref.lastModified = aws.ToTime(obj.LastModified)
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

func (c *S3Client) Ping(ctx context.Context) error {
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	if err != nil {
		return mapS3Error("head bucket", err)
	}
	return nil
}

func (c *S3Client) ListKeys(ctx context.Context, userID string) ([]string, error) {
	refs, err := c.list(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(refs))
	keys := make([]string, 0, len(refs))
	for _, r := range refs {
		if _, ok := seen[r.naturalKey]; ok {
			continue
		}
		seen[r.naturalKey] = struct{}{}
		keys = append(keys, r.naturalKey)
	}
	sort.Strings(keys)
	return keys, nil
}

func (c *S3Client) FetchByKeys(ctx context.Context, userID string, keys []string) ([]models.Record, error) {
	if len(keys) == 0 {
		return []models.Record{}, nil
	}
	want := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}
	refs, err := c.list(ctx, userID)
	if err != nil {
		return nil, err
	}
	selected := refs[:0]
	for _, r := range refs {
		if _, ok := want[r.naturalKey]; ok {
			selected = append(selected, r)
		}
	}
	return c.read(ctx, selected)
}

func (c *S3Client) FetchAll(ctx context.Context, userID string) ([]models.Record, error) {
	refs, err := c.list(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.read(ctx, refs)
}

func (c *S3Client) read(ctx context.Context, refs []objectRef) ([]models.Record, error) {
	out := make([]models.Record, 0, len(refs))
	for _, r := range refs {
		obj, err := c.api.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(c.bucket), Key: aws.String(r.key)})
		if err != nil {
			var nsk *types.NoSuchKey
			if errors.As(err, &nsk) {
				continue
			}
			return nil, mapS3Error("get object", err)
		}
		body, err := io.ReadAll(obj.Body)
		_ = obj.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read object %s: %v", common.ErrUnavailable, r.key, err)
		}
		var rec models.Record
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, fmt.Errorf("decode object %s: %w", r.key, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Upsert keeps one object per natural key. An empty ID takes the ID of the
// existing object for the key, or a fresh UUID.
func (c *S3Client) Upsert(ctx context.Context, userID string, rec models.Record) (models.Record, error) {
	if err := rec.Validate(); err != nil {
		return models.Record{}, err
	}
	refs, err := c.list(ctx, userID)
	if err != nil {
		return models.Record{}, err
	}

	var stale []string
	for _, r := range refs {
		if r.naturalKey != rec.NaturalKey && r.id != rec.ID {
			continue
		}
		if rec.ID == "" && r.naturalKey == rec.NaturalKey {
			rec.ID = r.id
		}
		stale = append(stale, r.key)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	now := c.now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	body, err := json.Marshal(rec)
	if err != nil {
		return models.Record{}, fmt.Errorf("encode record: %w", err)
	}
	key := objectKey(userID, rec.NaturalKey, rec.ID)
	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(jsonContentType),
	})
	if err != nil {
		return models.Record{}, mapS3Error("put object", err)
	}

	obsolete := stale[:0]
	for _, k := range stale {
		if k != key {
			obsolete = append(obsolete, k)
		}
	}
	if _, err := c.deleteKeys(ctx, obsolete); err != nil {
		return models.Record{}, err
	}
	return rec, nil
}

func (c *S3Client) Delete(ctx context.Context, userID string, id string) (bool, error) {
	refs, err := c.list(ctx, userID)
	if err != nil {
		return false, err
	}
	var keys []string
	for _, r := range refs {
		if r.id == id {
			keys = append(keys, r.key)
		}
	}
	n, err := c.deleteKeys(ctx, keys)
	return n > 0, err
}

// DeleteOlderThan uses the day key for entries and the object modification
// time for topics; every upsert rewrites the object, so it tracks UpdatedAt.
func (c *S3Client) DeleteOlderThan(ctx context.Context, userID string, kind models.Kind, cutoff time.Time) (int, error) {
	refs, err := c.list(ctx, userID)
	if err != nil {
		return 0, err
	}
	var keys []string
	for _, r := range refs {
		probe := models.Record{NaturalKey: r.naturalKey, Kind: models.KindOfKey(r.naturalKey), UpdatedAt: r.lastModified}
		if probe.Kind != kind {
			continue
		}
		if probe.OlderThan(cutoff) {
			keys = append(keys, r.key)
		}
	}
	return c.deleteKeys(ctx, keys)
}

func (c *S3Client) deleteKeys(ctx context.Context, keys []string) (int, error) {
	deleted := 0
	for start := 0; start < len(keys); start += maxDeleteBatch {
		end := min(start+maxDeleteBatch, len(keys))
		ids := make([]types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			ids = append(ids, types.ObjectIdentifier{Key: aws.String(k)})
		}
		out, err := c.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(c.bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return deleted, mapS3Error("delete objects", err)
		}
		if len(out.Errors) > 0 {
			first := out.Errors[0]
			return deleted + len(ids) - len(out.Errors), fmt.Errorf("delete object %s: %s",
				aws.ToString(first.Key), aws.ToString(first.Message))
		}
		deleted += len(ids)
	}
	return deleted, nil
}

func (c *S3Client) Close() error { return nil }

// mapS3Error classifies failures: service errors keep their meaning,
// anything that never reached the service is a network failure.
func mapS3Error(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, common.ErrCancelled)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket", "NoSuchKey", "NotFound":
			return fmt.Errorf("%s: %w: %s", op, common.ErrNotFound, apiErr.ErrorMessage())
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "Forbidden":
			return fmt.Errorf("%s: %w: %s", op, common.ErrUnauthorized, apiErr.ErrorMessage())
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, common.ErrUnavailable, err)
}
