package cache

import (
	"fmt"
	"time"
)

const periodListTTL = 5 * time.Minute

// periodListKey is the cache key for a work's period listing.
func periodListKey(workID uint) string {
	return fmt.Sprintf("work:%d:periods", workID)
}

// GetPeriodList returns the cached period listing JSON for a work, or
// ok=false on a cache miss.
func GetPeriodList(workID uint) (string, bool) {
	val, err := Get(periodListKey(workID))
	if err != nil {
		return "", false
	}
	return val, true
}

// SetPeriodList stores the serialized period listing for a work.
func SetPeriodList(workID uint, payload string) {
	_ = Set(periodListKey(workID), payload, periodListTTL)
}

// InvalidateWork drops the cached period listing after any period or task
// mutation for the work.
func InvalidateWork(workID uint) {
	_ = Delete(periodListKey(workID))
}
