package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/domain"
	"github.com/optimization-report/internal/domain/repository"
	"github.com/optimization-report/internal/pkg/metrics"
)

// Ключи артефактов относительно префикса хранилища
const (
	ReportKey   = "report.json"
	MetadataKey = "metadata.json"
	historyDir  = "history"

	contentTypeJSON = "application/json"

	cacheControlReport   = "public, max-age=3600"
	cacheControlSnapshot = "public, max-age=31536000"
	cacheControlMetadata = "public, max-age=300"
)

// SnapshotKey - history/{YYYY-MM-DD}/{ISO-время с ':' и '.' заменёнными на '-'}.json
func SnapshotKey(at time.Time) string {
	at = at.UTC()
	stamp := snapshotReplacer.Replace(at.Format("2006-01-02T15:04:05.000Z"))
	return fmt.Sprintf("%s/%s/%s.json", historyDir, at.Format("2006-01-02"), stamp)
}

var snapshotReplacer = strings.NewReplacer(":", "-", ".", "-")

// PublishResult - что было записано в хранилище
type PublishResult struct {
	SnapshotKey string
	Metadata    *domain.ReportMetadata
}

// PublishUseCase публикует артефакт отчёта и читает опубликованное
type PublishUseCase struct {
	store       repository.ReportStore
	cacheRepo   repository.CacheRepository
	publicURL   string
	prefix      string
	metadataTTL time.Duration
	logger      *zap.Logger
}

// NewPublishUseCase создает новый PublishUseCase. cacheRepo может быть nil.
func NewPublishUseCase(
	store repository.ReportStore,
	cacheRepo repository.CacheRepository,
	publicURL string,
	prefix string,
	metadataTTL time.Duration,
	logger *zap.Logger,
) *PublishUseCase {
	return &PublishUseCase{
		store:       store,
		cacheRepo:   cacheRepo,
		publicURL:   strings.TrimRight(publicURL, "/"),
		prefix:      strings.Trim(prefix, "/"),
		metadataTTL: metadataTTL,
		logger:      logger,
	}
}

// PublicURL - публичный адрес объекта с ключом key
func (uc *PublishUseCase) PublicURL(key string) string {
	if uc.prefix == "" {
		return uc.publicURL + "/" + key
	}
	return uc.publicURL + "/" + uc.prefix + "/" + key
}

// Publish кодирует артефакт один раз и загружает его целиком.
// Ошибка загрузки основного report.json возвращается, предыдущий артефакт остаётся.
// Снимок истории и metadata.json - вторичны: их сбои только логируются.
func (uc *PublishUseCase) Publish(ctx context.Context, report *domain.CompressedReport, at time.Time) (*PublishResult, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	err = uc.store.Put(ctx, domain.Object{
		Key:          ReportKey,
		Body:         body,
		ContentType:  contentTypeJSON,
		CacheControl: cacheControlReport,
	})
	if err != nil {
		metrics.PublishFailuresTotal.WithLabelValues("report").Inc()
		return nil, fmt.Errorf("failed to upload report: %w", err)
	}

	uc.logger.Info("Report uploaded",
		zap.String("url", uc.PublicURL(ReportKey)),
		zap.Int("bytes", len(body)),
		zap.Int("lands", len(report.Lands)))

	result := &PublishResult{}

	snapshotKey := SnapshotKey(at)
	err = uc.store.Put(ctx, domain.Object{
		Key:          snapshotKey,
		Body:         body,
		ContentType:  contentTypeJSON,
		CacheControl: cacheControlSnapshot,
	})
	if err != nil {
		metrics.PublishFailuresTotal.WithLabelValues("snapshot").Inc()
		uc.logger.Warn("Failed to upload history snapshot",
			zap.String("key", snapshotKey),
			zap.Error(err))
	} else {
		result.SnapshotKey = snapshotKey
	}

	meta := &domain.ReportMetadata{
		LastUpdated: at.UTC(),
		Stats:       report.Stats,
		TotalLands:  len(report.Lands),
		ReportURL:   uc.PublicURL(ReportKey),
	}
	if result.SnapshotKey != "" {
		meta.HistoryURL = uc.PublicURL(result.SnapshotKey)
	}
	result.Metadata = meta

	if err := uc.putMetadata(ctx, meta); err != nil {
		metrics.PublishFailuresTotal.WithLabelValues("metadata").Inc()
		uc.logger.Warn("Failed to upload metadata", zap.Error(err))
	}

	if uc.cacheRepo != nil {
		if err := uc.cacheRepo.SetMetadata(ctx, meta, uc.metadataTTL); err != nil {
			uc.logger.Warn("Failed to cache metadata", zap.Error(err))
		}
	}

	return result, nil
}

func (uc *PublishUseCase) putMetadata(ctx context.Context, meta *domain.ReportMetadata) error {
	body, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return uc.store.Put(ctx, domain.Object{
		Key:          MetadataKey,
		Body:         body,
		ContentType:  contentTypeJSON,
		CacheControl: cacheControlMetadata,
	})
}

// Latest возвращает тело последнего артефакта; domain.ErrNotFound если его ещё нет
func (uc *PublishUseCase) Latest(ctx context.Context) ([]byte, error) {
	return uc.store.Get(ctx, ReportKey)
}

// LatestReport читает и декодирует последний артефакт
func (uc *PublishUseCase) LatestReport(ctx context.Context) (*domain.CompressedReport, error) {
	body, err := uc.Latest(ctx)
	if err != nil {
		return nil, err
	}
	var report domain.CompressedReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}

// Metadata возвращает метаданные последней публикации: сначала кеш, затем хранилище
func (uc *PublishUseCase) Metadata(ctx context.Context) (*domain.ReportMetadata, error) {
	if uc.cacheRepo != nil {
		meta, err := uc.cacheRepo.GetMetadata(ctx)
		if err != nil {
			uc.logger.Warn("Failed to read cached metadata", zap.Error(err))
		} else if meta != nil {
			return meta, nil
		}
	}

	body, err := uc.store.Get(ctx, MetadataKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta domain.ReportMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}

	if uc.cacheRepo != nil {
		if err := uc.cacheRepo.SetMetadata(ctx, &meta, uc.metadataTTL); err != nil {
			uc.logger.Warn("Failed to cache metadata", zap.Error(err))
		}
	}
	return &meta, nil
}

// DeleteSnapshot удаляет снимок истории из хранилища
func (uc *PublishUseCase) DeleteSnapshot(ctx context.Context, key string) error {
	if !strings.HasPrefix(key, historyDir+"/") {
		return fmt.Errorf("refusing to delete non-snapshot key %q", key)
	}
	return uc.store.Delete(ctx, key)
}
