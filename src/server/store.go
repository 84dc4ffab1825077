// store.go
package server

import (
	"sync"

	"AirlineBids/src/processor"
)

// DatasetStore 会话数据集的持有者。Dataset本身不可变，上传或目录
// 监控触发重载时整体替换。
type DatasetStore struct {
	ds     processor.Dataset
	loaded bool
	mu     sync.RWMutex
}

// Get 获取当前数据集(线程安全)，第二个返回值表示是否已加载
func (s *DatasetStore) Get() (processor.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds, s.loaded
}

// Set 替换当前数据集(线程安全)
func (s *DatasetStore) Set(ds processor.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
	s.loaded = true
}
