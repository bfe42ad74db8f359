package objectstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain/repository"
)

const (
	bundleSuffix = "-mobile.zip"
	listPageSize = 1000
)

// ErrBucketNotConfigured - листинг невозможен, нужен поштучный fallback
var ErrBucketNotConfigured = errors.New("asset bucket not configured")

type bundleLister struct {
	client s3.ListObjectsV2APIClient
	bucket string
	prefix string
	logger *zap.Logger
}

func NewBundleLister(client s3.ListObjectsV2APIClient, bucket, prefix string, logger *zap.Logger) repository.BundleLister {
	return &bundleLister{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

// ListOptimizedSceneIDs проходит все страницы листинга под префиксом
func (l *bundleLister) ListOptimizedSceneIDs(ctx context.Context) (map[string]struct{}, error) {
	if l.client == nil || l.bucket == "" {
		return nil, ErrBucketNotConfigured
	}

	paginator := s3.NewListObjectsV2Paginator(l.client, &s3.ListObjectsV2Input{
		Bucket:  aws.String(l.bucket),
		Prefix:  aws.String(l.prefix),
		MaxKeys: aws.Int32(listPageSize),
	})

	ids := make(map[string]struct{})
	pages, keys := 0, 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list bundles %s/%s: %w", l.bucket, l.prefix, err)
		}
		pages++

		for _, obj := range page.Contents {
			keys++
			if id, ok := ParseBundleKey(l.prefix, aws.ToString(obj.Key)); ok {
				ids[id] = struct{}{}
			}
		}
	}

	l.logger.Info("Optimized bundles listed",
		zap.String("bucket", l.bucket),
		zap.Int("pages", pages),
		zap.Int("keys", keys),
		zap.Int("bundles", len(ids)))

	return ids, nil
}

// ParseBundleKey извлекает sceneId из ключа {prefix}{sceneId}-mobile.zip
func ParseBundleKey(prefix, key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, prefix)
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, bundleSuffix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
