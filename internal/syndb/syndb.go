// Package syndb is a content-addressed parse cache: the semantic-database
// layer that memoizes entry-point results keyed by the hash of the dialect
// and source text. Distinct tools sharing one DB see identical trees for
// identical inputs.
package syndb

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/orizon-lang/aster/internal/ast"
	"github.com/orizon-lang/aster/internal/diag"
	"github.com/orizon-lang/aster/internal/dialect"
	"github.com/orizon-lang/aster/internal/parser"
	"github.com/orizon-lang/aster/internal/source"
)

// Result is one cached parse outcome.
type Result struct {
	Tree        *ast.Source
	Err         error
	Diagnostics []diag.Diagnostic
}

// DB caches parse results with LRU eviction.
type DB struct {
	cache *lru.Cache[string, *Result]
}

// New creates a DB holding up to size entries.
func New(size int) (*DB, error) {
	c, err := lru.New[string, *Result](size)
	if err != nil {
		return nil, err
	}
	return &DB{cache: c}, nil
}

// Key derives the cache key for a (dialect, source) pair.
func Key(d dialect.Dialect, text string) string {
	h := sha256.New()
	h.Write([]byte(d.Name))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// ParseSource parses text under d, reusing a previous result when the same
// input was seen before. The returned Result is shared; callers must not
// mutate the tree.
func (db *DB) ParseSource(name, text string, d dialect.Dialect) *Result {
	key := Key(d, text)
	if res, ok := db.cache.Get(key); ok {
		return res
	}
	collector := &diag.Collector{}
	p := parser.New(source.Named(name, text), d, collector)
	tree, err := p.ParseSource()
	res := &Result{Tree: tree, Err: err, Diagnostics: collector.All()}
	db.cache.Add(key, res)
	return res
}

// Invalidate drops the cached result for a (dialect, source) pair.
func (db *DB) Invalidate(d dialect.Dialect, text string) {
	db.cache.Remove(Key(d, text))
}

// Len reports the number of cached results.
func (db *DB) Len() int { return db.cache.Len() }

// Purge drops every cached result.
func (db *DB) Purge() { db.cache.Purge() }
