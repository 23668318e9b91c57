// cache.go — LRU-кэш снимков альбомов с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable. Кэшируются только
// метаданные (альбом + упорядоченный список фотографий) — подписанные URL
// вычисляются заново на каждый запрос, а действительность share-ссылки
// всегда проверяется по базе.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/fotoalbum/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fa_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш снимков альбомов.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fa_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша снимков альбомов.",
	})
)

// CacheService — LRU-кэш снимков альбомов с автоматическим TTL.
// Каждый экземпляр сервиса имеет собственный in-memory кэш
// (per-instance, stateless архитектура).
type CacheService struct {
	cache *expirable.LRU[string, *model.AlbumSnapshot]
}

// NewCacheService создаёт LRU-кэш с указанным максимальным размером и TTL.
func NewCacheService(maxSize int, ttl time.Duration) *CacheService {
	cache := expirable.NewLRU[string, *model.AlbumSnapshot](maxSize, nil, ttl)
	return &CacheService{cache: cache}
}

// Get возвращает снимок альбома из кэша по albumID.
// Возвращает (снимок, true) при hit или (nil, false) при miss.
func (c *CacheService) Get(albumID string) (*model.AlbumSnapshot, bool) {
	val, ok := c.cache.Get(albumID)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет снимок в кэше.
func (c *CacheService) Set(albumID string, snap *model.AlbumSnapshot) {
	c.cache.Add(albumID, snap)
}

// Delete удаляет снимок из кэша (инвалидация при мутации альбома).
func (c *CacheService) Delete(albumID string) {
	c.cache.Remove(albumID)
}
