package dialect

import "testing"

func TestNamedDialects(t *testing.T) {
	if Aster1.AllowSignificantIndentation {
		t.Error("Aster1 must not allow significant indentation")
	}
	if !Aster1.AllowExistentialTypes {
		t.Error("Aster1 allows existential types")
	}
	if !Aster3.AllowGivenUsing || !Aster3.AllowEnums || !Aster3.AllowTypeLambdas {
		t.Error("Aster3 misses current-dialect features")
	}
	if Aster3.AllowProcedureSyntax || Aster3.AllowDoWhile || Aster3.AllowExistentialTypes {
		t.Error("Aster3 must drop legacy features")
	}
}

func TestExtends(t *testing.T) {
	if !Aster2.Extends(Aster1) {
		t.Error("Aster2 extends Aster1")
	}
	if !Aster3.WithUnquotes().Extends(Aster3) {
		t.Error("unquote variant extends its base")
	}
	if Aster1.Extends(Aster3) {
		t.Error("Aster1 does not extend Aster3")
	}
}

func TestWithUnquotes(t *testing.T) {
	d := Aster3.WithUnquotes()
	if !d.AllowUnquotes {
		t.Error("unquotes not enabled")
	}
	if Aster3.AllowUnquotes {
		t.Error("base dialect mutated")
	}
	q := Aster3.WithQuasiPatterns()
	if !q.AllowQuasiPattern || !q.AllowUnquotes {
		t.Error("quasi pattern variant incomplete")
	}
}

func TestForVersion(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"3.4.0", "Aster3"},
		{"3.0.0", "Aster3"},
		{"2.13.12", "Aster2"},
		{"2.12.18", "Aster1"},
	}
	for _, tt := range tests {
		d, err := ForVersion(tt.version)
		if err != nil {
			t.Fatalf("ForVersion(%s): %v", tt.version, err)
		}
		if d.Name != tt.want {
			t.Errorf("ForVersion(%s): got %s, want %s", tt.version, d.Name, tt.want)
		}
	}
	if _, err := ForVersion("not-a-version"); err == nil {
		t.Error("expected error for malformed version")
	}
}
