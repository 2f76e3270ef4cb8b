package constants

import (
	"fmt"
	"time"
)

// Redis Cache Configuration
// Pattern: inviteform:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_REALTIME_SHORT = 15 * time.Second // advisory quota display
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "inviteform"
)

// ================== QUOTA ==================

const (
	CACHE_KEY_QUOTA = CACHE_PREFIX + ":quota:code:" // + registration code
)

// ================== RATE LIMIT ==================

const (
	CACHE_KEY_RATELIMIT = CACHE_PREFIX + ":ratelimit:" // + ip:type
)

// QuotaKey returns the cache key for a registration code's remaining quota
func QuotaKey(code string) string {
	return CACHE_KEY_QUOTA + code
}

// RateLimitKey returns the sliding window key for an IP and limit type
func RateLimitKey(ip, limitType string) string {
	return fmt.Sprintf("%s%s:%s", CACHE_KEY_RATELIMIT, ip, limitType)
}

/*
Invalidation rules:
   - Forwarded submission (any outcome other than a local validation error):
     Invalidate: inviteform:quota:code:{code}
*/
