// Package dialect defines the feature-flag sets that gate Aster grammar
// productions. A Dialect is an immutable value; the parser consults it and
// never computes flags itself.
package dialect

import (
	"fmt"
	"reflect"

	semver "github.com/Masterminds/semver/v3"
)

// Dialect is a set of grammar feature flags. The zero value disables
// everything; use one of the named dialects below as a starting point.
type Dialect struct {
	Name string

	// Types
	AllowAndTypes                   bool // A & B intersection types
	AllowOrTypes                    bool // A | B union types
	AllowLiteralTypes               bool // 42, "s" in type position
	AllowTypeLambdas                bool // [X] =>> T
	AllowPolymorphicFunctionTypes   bool // [X] => T
	AllowContextFunctionTypes       bool // T ?=> U
	AllowDependentFunctionTypes     bool // (x: T) => x.Out
	AllowExistentialTypes           bool // T forSome { ... }
	AllowMatchTypes                 bool // T match { case ... }
	AllowQuestionMarkAsTypeWildcard bool // ? in place of _
	AllowOpaqueTypes                bool // opaque type T
	AllowViewBounds                 bool // [A <% B]

	// Terms
	AllowSignificantIndentation bool // indent/outdent as block delimiters
	AllowFewerBraces            bool // colon-argument syntax x.map: y =>
	AllowMatchAsOperator        bool // e match { ... } in operator position
	AllowQuotedTerms            bool // '{ ... } and '[ ... ]
	AllowSplices                bool // ${ ... }
	AllowSymbolLiterals         bool // 'sym
	AllowDoWhile                bool // do ... while(...)
	AllowTryWithAnyExpr         bool // try e catch handlerExpr
	AllowPostfixOperators       bool // a op (no operand)
	AllowXmlLiterals            bool // <a>...</a>
	AllowImplicitFunctionParams bool // implicit x => ...
	AllowNamedTupleArguments    bool // (a = 1, b = 2) tuple sugar
	AllowProcedureSyntax        bool // def f { ... } with no result type
	AllowToplevelTerms          bool // bare terms at the top level
	AllowToplevelStatements     bool // defs outside a template at top level
	AllowInterpolation          bool // s"..." string interpolation

	// Patterns
	AllowPostfixStarVarargSplices   bool // f(xs*)
	AllowAtForExtractorVarargs      bool // case E(x @ _*)
	AllowColonForExtractorVarargs   bool // case E(x: _*)
	AllowUpperCasePatternVarBinding bool // case X @ pat binds X
	AllowInfixPatterns              bool // case a :: b

	// Definitions
	AllowGivenUsing         bool // given/using clauses
	AllowGivenImports       bool // import a.given
	AllowExtensionMethods   bool // extension (x: T) def f
	AllowEnums              bool // enum E { case ... }
	AllowDerives            bool // derives clause
	AllowEndMarkers         bool // end if / end f
	AllowExportClause       bool // export a.b
	AllowOpenClass          bool // open modifier
	AllowInlineMods         bool // inline soft modifier
	AllowInfixMods          bool // infix soft modifier
	AllowTransparentMods    bool // transparent soft modifier
	AllowCaseImplicit       bool // case class C(implicit ...)
	AllowTraitParameters    bool // trait T(x: Int)
	AllowTrailingCommas     bool // f(a, b,)
	AllowStarWildcardImport bool // import a.*
	AllowAsForImportRename  bool // import a.{b as c}
	AllowSecondaryCtors     bool // def this(...)

	// Quasiquotes
	AllowUnquotes     bool // $x / ${...} escapes inside quasiquoted source
	AllowQuasiPattern bool // quasiquote used in pattern position
}

// Aster1 is the legacy dialect: curly-brace syntax only, existential types,
// procedure syntax, view bounds, do-while.
var Aster1 = Dialect{
	Name:                          "Aster1",
	AllowAndTypes:                 false,
	AllowExistentialTypes:         true,
	AllowViewBounds:               true,
	AllowDoWhile:                  true,
	AllowProcedureSyntax:          true,
	AllowPostfixOperators:         true,
	AllowSymbolLiterals:           true,
	AllowXmlLiterals:              true,
	AllowInterpolation:            true,
	AllowInfixPatterns:            true,
	AllowAtForExtractorVarargs:    true,
	AllowColonForExtractorVarargs: true,
	AllowSecondaryCtors:           true,
	AllowToplevelStatements:       true,
}

// Aster2 extends Aster1 with literal types and trailing commas and drops
// nothing.
var Aster2 = func() Dialect {
	d := Aster1
	d.Name = "Aster2"
	d.AllowLiteralTypes = true
	d.AllowTrailingCommas = true
	return d
}()

// Aster3 is the current dialect: significant indentation, givens, enums,
// extension methods, type lambdas, quotes and splices; existentials,
// procedure syntax, do-while and view bounds are gone.
var Aster3 = func() Dialect {
	d := Aster2
	d.Name = "Aster3"
	d.AllowAndTypes = true
	d.AllowOrTypes = true
	d.AllowTypeLambdas = true
	d.AllowPolymorphicFunctionTypes = true
	d.AllowContextFunctionTypes = true
	d.AllowDependentFunctionTypes = true
	d.AllowMatchTypes = true
	d.AllowQuestionMarkAsTypeWildcard = true
	d.AllowOpaqueTypes = true
	d.AllowSignificantIndentation = true
	d.AllowFewerBraces = true
	d.AllowMatchAsOperator = true
	d.AllowQuotedTerms = true
	d.AllowSplices = true
	d.AllowGivenUsing = true
	d.AllowGivenImports = true
	d.AllowExtensionMethods = true
	d.AllowEnums = true
	d.AllowDerives = true
	d.AllowEndMarkers = true
	d.AllowExportClause = true
	d.AllowOpenClass = true
	d.AllowInlineMods = true
	d.AllowInfixMods = true
	d.AllowTransparentMods = true
	d.AllowTraitParameters = true
	d.AllowStarWildcardImport = true
	d.AllowAsForImportRename = true
	d.AllowPostfixStarVarargSplices = true
	d.AllowUpperCasePatternVarBinding = true
	d.AllowTryWithAnyExpr = true
	d.AllowToplevelTerms = true
	d.AllowExistentialTypes = false
	d.AllowViewBounds = false
	d.AllowDoWhile = false
	d.AllowProcedureSyntax = false
	d.AllowSymbolLiterals = false
	d.AllowXmlLiterals = false
	return d
}()

// WithUnquotes returns a copy of d accepting quasiquote unquote escapes.
func (d Dialect) WithUnquotes() Dialect {
	d.Name = d.Name + ".WithUnquotes"
	d.AllowUnquotes = true
	return d
}

// WithQuasiPatterns returns a copy of d for quasiquote pattern position.
func (d Dialect) WithQuasiPatterns() Dialect {
	d = d.WithUnquotes()
	d.AllowQuasiPattern = true
	return d
}

// String returns the dialect name.
func (d Dialect) String() string { return d.Name }

// Extends reports whether d enables every flag that base enables. Used by
// tests to assert dialect monotonicity.
func (d Dialect) Extends(base Dialect) bool {
	dv, bv := reflect.ValueOf(d), reflect.ValueOf(base)
	for i := 0; i < bv.NumField(); i++ {
		f := bv.Field(i)
		if f.Kind() == reflect.Bool && f.Bool() && !dv.Field(i).Bool() {
			return false
		}
	}
	return true
}

// ForVersion maps a language version string to its dialect. Accepts any
// semver-parsable version; constraint boundaries follow the published
// language history.
func ForVersion(version string) (Dialect, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return Dialect{}, fmt.Errorf("dialect: bad version %q: %w", version, err)
	}
	for _, row := range []struct {
		constraint string
		dialect    Dialect
	}{
		{">= 3.0.0-0", Aster3},
		{">= 2.13.0", Aster2},
		{">= 0.0.0-0", Aster1},
	} {
		c, err := semver.NewConstraint(row.constraint)
		if err != nil {
			return Dialect{}, err
		}
		if c.Check(v) {
			return row.dialect, nil
		}
	}
	return Aster1, nil
}
