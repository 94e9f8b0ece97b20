// Package cachefs implements the on-disk extraction cache of spec.md §6,
// keyed by (language_tag, content_hash), fronted by an in-memory LRU.
package cachefs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"relgraph/internal/errs"
	"relgraph/internal/rlog"
	"relgraph/internal/symtab"
)

// schemaVersion is bumped whenever Entry's shape changes. spec.md §6: "No
// cross-version compatibility guarantee; a mismatching schema header
// invalidates the entry."
const schemaVersion = 1

// Entry is the serialized form of one file's extraction output.
type Entry struct {
	Schema  int           `json:"schema"`
	Sites   []symtab.Site `json:"sites"`
	Imports []string      `json:"imports"`
}

// Cache is the content-addressed extraction cache. A nil *Cache is valid
// and behaves as disabled (spec.md §6: "disabling is allowed").
type Cache struct {
	dir     string
	enabled bool
	mem     *lru.Cache[string, Entry]
	errs    *errs.Counter
	log     *rlog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats is a point-in-time snapshot of lookup outcomes, surfaced by the
// `relgraph doctor` subcommand.
type Stats struct {
	Hits   int64
	Misses int64
}

// Stats returns the cache's cumulative hit/miss counts. A nil *Cache
// reports all-zero stats.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// New returns a Cache rooted at dir with an in-memory LRU front of the
// given size. If dir is "", the cache is disabled (memory front only).
func New(dir string, memSize int, counter *errs.Counter, log *rlog.Logger) *Cache {
	if memSize <= 0 {
		memSize = 4096
	}
	mem, err := lru.New[string, Entry](memSize)
	if err != nil {
		mem, _ = lru.New[string, Entry](128)
	}
	return &Cache{dir: dir, enabled: dir != "", mem: mem, errs: counter, log: log}
}

func key(language string, source []byte) (dirName, fileName, full string) {
	sum := sha256.Sum256(source)
	fileName = hex.EncodeToString(sum[:]) + ".json"
	dirName = language
	full = language + "/" + fileName
	return
}

// Get returns the cached entry for (language, content of source), if any.
func (c *Cache) Get(language string, source []byte) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	dirName, fileName, full := key(language, source)
	if v, ok := c.mem.Get(full); ok {
		c.hits.Add(1)
		return v, true
	}
	if !c.enabled {
		c.misses.Add(1)
		return Entry{}, false
	}
	path := filepath.Join(c.dir, dirName, fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		c.misses.Add(1)
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil || e.Schema != schemaVersion {
		if c.errs != nil {
			c.errs.Record(errs.CacheError)
		}
		c.misses.Add(1)
		return Entry{}, false
	}
	c.mem.Add(full, e)
	c.hits.Add(1)
	return e, true
}

// Put stores sites/imports for (language, content of source). Writes are
// atomic (temp-file + rename); concurrent writers for the same key are
// harmless last-writer-wins, since entries are pure functions of the key
// (spec.md §5).
func (c *Cache) Put(language string, source []byte, sites []symtab.Site, imports []string) {
	if c == nil {
		return
	}
	e := Entry{Schema: schemaVersion, Sites: sites, Imports: imports}
	dirName, fileName, full := key(language, source)
	c.mem.Add(full, e)
	if !c.enabled {
		return
	}

	dir := filepath.Join(c.dir, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.recordCacheErr("mkdir", err)
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		c.recordCacheErr("marshal", err)
		return
	}

	tmp, err := os.CreateTemp(dir, "."+fileName+".tmp-*")
	if err != nil {
		c.recordCacheErr("create temp", err)
		return
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		c.recordCacheErr("write temp", err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		c.recordCacheErr("close temp", err)
		return
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, fileName)); err != nil {
		os.Remove(tmpPath)
		c.recordCacheErr("rename", err)
		return
	}
}

func (c *Cache) recordCacheErr(op string, err error) {
	if c.errs != nil {
		c.errs.Record(errs.CacheError)
	}
	if c.log != nil {
		c.log.Warn("cache write failed", rlog.F("op", op), rlog.F("error", err.Error()))
	}
}
