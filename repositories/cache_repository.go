package repositories

import (
	"encoding/json"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/karlseguin/ccache/v3"
	"go.uber.org/zap"

	"rental-api/domain"
)

// CacheRepository define la interfaz de caché para resultados de búsqueda.
type CacheRepository interface {
	Get(key string) ([]domain.Property, int, bool)
	Set(key string, properties []domain.Property, total int, ttl time.Duration)
}

// cacheData son los datos serializados en Memcached.
type cacheData struct {
	Properties []domain.Property `json:"properties"`
	Total      int               `json:"total"`
}

// cacheRepository implementa CacheRepository con dos niveles: ccache local
// y Memcached compartido entre instancias.
type cacheRepository struct {
	localCache      *ccache.Cache[*cacheData]
	memcachedClient *memcache.Client
	localTTL        time.Duration
	logger          *zap.Logger
}

// NewCacheRepository crea el caché de dos niveles.
func NewCacheRepository(memcachedHost string, logger *zap.Logger) CacheRepository {
	return &cacheRepository{
		localCache:      ccache.New(ccache.Configure[*cacheData]().MaxSize(1000)),
		memcachedClient: memcache.New(memcachedHost),
		localTTL:        5 * time.Minute,
		logger:          logger,
	}
}

// Get busca primero en el caché local y después en Memcached.
func (r *cacheRepository) Get(key string) ([]domain.Property, int, bool) {
	item := r.localCache.Get(key)
	if item != nil && !item.Expired() {
		data := item.Value()
		return data.Properties, data.Total, true
	}

	memcachedItem, err := r.memcachedClient.Get(key)
	if err != nil {
		if err != memcache.ErrCacheMiss {
			r.logger.Warn("memcached get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, 0, false
	}

	var data cacheData
	if err := json.Unmarshal(memcachedItem.Value, &data); err != nil {
		r.logger.Warn("corrupt cache entry", zap.String("key", key), zap.Error(err))
		return nil, 0, false
	}

	// repoblar el nivel local para las próximas consultas
	r.localCache.Set(key, &data, r.localTTL)
	return data.Properties, data.Total, true
}

// Set guarda en ambos niveles. Un fallo en Memcached no es fatal: el caché
// es una optimización, no una fuente de verdad.
func (r *cacheRepository) Set(key string, properties []domain.Property, total int, ttl time.Duration) {
	data := &cacheData{Properties: properties, Total: total}

	r.localCache.Set(key, data, r.localTTL)

	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Warn("failed to marshal cache entry", zap.String("key", key), zap.Error(err))
		return
	}

	if err := r.memcachedClient.Set(&memcache.Item{
		Key:        key,
		Value:      jsonData,
		Expiration: int32(ttl.Seconds()),
	}); err != nil {
		r.logger.Warn("memcached set failed", zap.String("key", key), zap.Error(err))
	}
}
