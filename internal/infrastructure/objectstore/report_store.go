package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/domain/repository"
)

const contentEncodingGzip = "gzip"

type reportStore struct {
	client API
	bucket string
	prefix string
	logger *zap.Logger
}

// NewReportStore - хранилище артефактов; ключи задаются относительно prefix.
// Тела сжимаются gzip и помечаются Content-Encoding.
func NewReportStore(client API, bucket, prefix string, logger *zap.Logger) repository.ReportStore {
	return &reportStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

func (s *reportStore) fullKey(key string) string {
	return path.Join(s.prefix, key)
}

// Put загружает объект одним PutObject: читатели видят либо старую, либо новую версию
func (s *reportStore) Put(ctx context.Context, obj domain.Object) error {
	body, err := compress(obj.Body)
	if err != nil {
		return fmt.Errorf("compress %s: %w", obj.Key, err)
	}

	key := s.fullKey(obj.Key)
	input := &s3.PutObjectInput{
		Bucket:          aws.String(s.bucket),
		Key:             aws.String(key),
		Body:            bytes.NewReader(body),
		ContentLength:   aws.Int64(int64(len(body))),
		ContentEncoding: aws.String(contentEncodingGzip),
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}
	if obj.CacheControl != "" {
		input.CacheControl = aws.String(obj.CacheControl)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put %s/%s: %w", s.bucket, key, err)
	}

	s.logger.Debug("Object stored",
		zap.String("key", key),
		zap.Int("size", len(obj.Body)),
		zap.Int("compressed_size", len(body)))
	return nil
}

func (s *reportStore) Get(ctx context.Context, key string) ([]byte, error) {
	full := s.fullKey(key)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(full),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", s.bucket, full, err)
	}
	defer out.Body.Close()

	var r io.Reader = out.Body
	if aws.ToString(out.ContentEncoding) == contentEncodingGzip {
		zr, err := gzip.NewReader(out.Body)
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", full, err)
		}
		defer zr.Close()
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", full, err)
	}
	return data, nil
}

func (s *reportStore) Delete(ctx context.Context, key string) error {
	full := s.fullKey(key)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(full),
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", s.bucket, full, err)
	}

	s.logger.Debug("Object deleted", zap.String("key", full))
	return nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
