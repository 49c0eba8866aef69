package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ScopeLockKey returns the lock key guarding imports and distributions of a bank scope
func (r *CacheKeyStruct) ScopeLockKey(scope string) string {
	return fmt.Sprintf("lock:bank:%s", scope)
}

// DistributionReportKey returns the cache key for the last distribution report of a scope
func (r *CacheKeyStruct) DistributionReportKey(scope string) string {
	return fmt.Sprintf("distribution:%s:last", scope)
}

var CacheKey = NewCacheKeyStruct()
