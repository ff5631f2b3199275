// Package cache memoizes stage results in process memory with a TTL.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"newsintel/internal/ports"
)

// Memory is an LRU-bounded TTL cache keyed by stage and article
// fingerprint. Expired entries read as absent.
type Memory struct {
	lru *expirable.LRU[string, any]
}

var _ ports.StageCache = (*Memory)(nil)

// NewMemory builds a cache holding at most size entries, each living for
// ttl after insertion.
func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = 1024
	}
	return &Memory{lru: expirable.NewLRU[string, any](size, nil, ttl)}
}

func (m *Memory) Get(stage, fingerprint string) (any, bool) {
	return m.lru.Get(key(stage, fingerprint))
}

func (m *Memory) Put(stage, fingerprint string, result any) {
	m.lru.Add(key(stage, fingerprint), result)
}

// Len reports live entries, for the health endpoint.
func (m *Memory) Len() int {
	return m.lru.Len()
}

func key(stage, fingerprint string) string {
	return stage + ":" + fingerprint
}
