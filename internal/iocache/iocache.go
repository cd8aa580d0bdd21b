// Package iocache is for caching light curves and checkpointing batch results.
package iocache

import (
	"sync"

	"github.com/huangsam/starspin/internal/contract"
)

// CacheStoreManager manages the light curve cache and the result store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	lightCurves  contract.CacheStore
	results      contract.ResultStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetLightCurveStore returns the light curve CacheStore.
func (mgr *CacheStoreManager) GetLightCurveStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.lightCurves
}

// GetResultStore returns the batch ResultStore.
func (mgr *CacheStoreManager) GetResultStore() contract.ResultStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.results
}
