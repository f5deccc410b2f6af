package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	metaStartedKey  = "meta_started_at"
	metaCacheHitKey = "meta_cache_hit"
)

// WithResponseMeta marks the request start so handlers can attach timing and
// cache information to the response envelope.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(metaStartedKey, time.Now())
		c.Next()
	}
}

// SetCacheHit records whether the handler served its payload from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	if c == nil {
		return
	}
	c.Set(metaCacheHitKey, hit)
}

// ExtractMeta assembles the metadata map for the response envelope. It is
// called just before the response is written, so the processing time covers
// the whole handler chain up to that point.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta := make(map[string]interface{}, 2)
	if v, ok := c.Get(metaStartedKey); ok {
		if started, ok := v.(time.Time); ok {
			meta["processing_time_ms"] = time.Since(started).Milliseconds()
		}
	}
	if v, ok := c.Get(metaCacheHitKey); ok {
		if hit, ok := v.(bool); ok {
			meta["cache_hit"] = hit
		}
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}
