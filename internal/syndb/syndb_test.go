package syndb

import (
	"testing"

	"github.com/orizon-lang/aster/internal/dialect"
)

func TestParseSourceCaching(t *testing.T) {
	db, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	first := db.ParseSource("a.aster", "class C", dialect.Aster3)
	if first.Err != nil {
		t.Fatalf("parse: %v", first.Err)
	}
	second := db.ParseSource("a.aster", "class C", dialect.Aster3)
	if first != second {
		t.Error("repeated parse of identical input must return the cached result")
	}
	if db.Len() != 1 {
		t.Errorf("cache size: got %d, want 1", db.Len())
	}
}

func TestKeyIncludesDialect(t *testing.T) {
	if Key(dialect.Aster1, "x") == Key(dialect.Aster3, "x") {
		t.Error("cache keys must distinguish dialects")
	}
	if Key(dialect.Aster3, "x") == Key(dialect.Aster3, "y") {
		t.Error("cache keys must distinguish sources")
	}
}

func TestErrorsAreCachedToo(t *testing.T) {
	db, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	bad := db.ParseSource("b.aster", "class 42", dialect.Aster3)
	if bad.Err == nil {
		t.Fatal("expected parse error")
	}
	again := db.ParseSource("b.aster", "class 42", dialect.Aster3)
	if bad != again {
		t.Error("failed parses are cached like successes")
	}
}

func TestInvalidate(t *testing.T) {
	db, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	first := db.ParseSource("c.aster", "class C", dialect.Aster3)
	db.Invalidate(dialect.Aster3, "class C")
	second := db.ParseSource("c.aster", "class C", dialect.Aster3)
	if first == second {
		t.Error("invalidate must force a fresh parse")
	}
}
