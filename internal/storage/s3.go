// s3.go — реализация ObjectStorage поверх S3-совместимого хранилища
// через aws-sdk-go-v2. Поддерживает кастомный endpoint (MinIO и т.п.)
// с path-style адресацией.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Максимальный срок действия подписанного URL (ограничение SigV4 — 7 суток).
const maxSignedURLTTL = 7 * 24 * time.Hour

// Prometheus-метрики object storage.
var (
	signedURLBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fa_signed_url_batch_size",
		Help:    "Количество ключей в одном batch-запросе подписанных URL.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
	})
	signedURLFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fa_signed_url_failed_total",
		Help: "Количество ключей, которые не удалось подписать.",
	})
	uploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fa_storage_upload_bytes_total",
		Help: "Общее количество байт, загруженных в object storage.",
	})
)

// S3Storage — реализация ObjectStorage через S3 API.
type S3Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	logger    *slog.Logger
}

// Options — параметры подключения к S3-совместимому хранилищу.
type Options struct {
	// Endpoint — URL S3 API. Пустой — AWS по региону.
	Endpoint string
	// Region — регион.
	Region string
	// Bucket — имя bucket.
	Bucket string
	// AccessKey, SecretKey — статические ключи доступа.
	AccessKey string
	SecretKey string
}

// New создаёт S3Storage.
func New(opts Options, logger *slog.Logger) (*S3Storage, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("имя bucket не задано")
	}

	cfg := aws.Config{
		Region: opts.Region,
		Credentials: credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     opts.AccessKey,
				SecretAccessKey: opts.SecretKey,
			},
		},
		RetryMode:        aws.RetryModeStandard,
		RetryMaxAttempts: 3,
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			// Path-style для S3-совместимых хранилищ (MinIO, Ceph RGW)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    opts.Bucket,
		logger:    logger.With(slog.String("component", "s3_storage")),
	}, nil
}

// Upload загружает объект под указанным ключом.
func (s *S3Storage) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	if key == "" {
		return fmt.Errorf("пустой ключ объекта")
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("чтение тела объекта %s: %w", key, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("загрузка объекта %s: %w", key, err)
	}

	uploadBytesTotal.Add(float64(len(data)))
	return nil
}

// Delete удаляет объект по ключу.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("пустой ключ объекта")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("удаление объекта %s: %w", key, err)
	}
	return nil
}

// SignedURLs выдаёт подписанные URL для набора ключей.
// Подпись — локальная операция SigV4 (без сетевых вызовов), поэтому batch
// любого размера стоит O(len(keys)) CPU и ноль RTT. Ключ, который не удалось
// подписать, логируется и опускается из результата — частичный результат
// не считается ошибкой всего batch'а.
func (s *S3Storage) SignedURLs(ctx context.Context, keys []string, ttl time.Duration) (map[string]string, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("срок действия подписанного URL должен быть > 0")
	}
	if ttl > maxSignedURLTTL {
		ttl = maxSignedURLTTL
	}

	signedURLBatchSize.Observe(float64(len(keys)))

	result := make(map[string]string, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}

		req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, func(po *s3.PresignOptions) {
			po.Expires = ttl
		})
		if err != nil {
			signedURLFailedTotal.Inc()
			s.logger.Warn("Не удалось подписать ключ, пропускаем",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			continue
		}

		result[key] = req.URL
	}

	return result, nil
}

// ReadinessChecker — проверка доступности object storage для health endpoint.
type ReadinessChecker struct {
	storage *S3Storage
}

// NewReadinessChecker создаёт проверку готовности object storage.
func NewReadinessChecker(s *S3Storage) *ReadinessChecker {
	return &ReadinessChecker{storage: s}
}

// CheckReady проверяет доступность bucket через ListObjectsV2 с лимитом 1.
func (c *ReadinessChecker) CheckReady() (status, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := c.storage.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.storage.bucket),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return "fail", fmt.Sprintf("object storage недоступен: %v", err)
	}
	return "ok", "bucket доступен"
}
