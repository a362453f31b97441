package ast

import (
	"crypto/md5"
	"encoding/hex"
	"sync"

	"github.com/tristendillon/amdbutler/core/document"
	"github.com/tristendillon/amdbutler/core/logger"
)

type ParseStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

type parseEntry struct {
	contentHash string
	imports     document.Range
	params      document.Range
	err         error
}

// ParseCache remembers the ranges found for each buffer path until the
// buffer text changes, so one action parses a file only once.
type ParseCache struct {
	entries map[string]*parseEntry
	mutex   sync.RWMutex
	stats   struct {
		hits   int64
		misses int64
	}
}

func NewParseCache() *ParseCache {
	return &ParseCache{entries: make(map[string]*parseEntry)}
}

func hashContent(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}

func (pc *ParseCache) get(path, contentHash string) (*parseEntry, bool) {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()

	entry, exists := pc.entries[path]
	if exists && entry.contentHash == contentHash {
		pc.stats.hits++
		logger.Debug("ParseCache: Hit for %s", path)
		return entry, true
	}
	pc.stats.misses++
	logger.Debug("ParseCache: Miss for %s", path)
	return nil, false
}

func (pc *ParseCache) set(path string, entry *parseEntry) {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()
	pc.entries[path] = entry
}

func (pc *ParseCache) Invalidate(path string) {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()
	delete(pc.entries, path)
}

func (pc *ParseCache) GetStats() *ParseStats {
	pc.mutex.RLock()
	defer pc.mutex.RUnlock()
	return &ParseStats{
		Hits:    pc.stats.hits,
		Misses:  pc.stats.misses,
		Entries: len(pc.entries),
	}
}

func (pc *ParseCache) LogStats() {
	stats := pc.GetStats()
	logger.Debug("Parse cache: %d hits, %d misses, %d entries", stats.Hits, stats.Misses, stats.Entries)
}
