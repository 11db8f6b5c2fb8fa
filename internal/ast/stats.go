package ast

// Source is a whole compilation unit.
type Source struct {
	TreeBase
	Stats []Stat
}

// MultiSource is a sequence of @-delimited sources (script input).
type MultiSource struct {
	TreeBase
	Sources []*Source
}

// Pkg is `package ref { stats }` or a header-style package clause.
type Pkg struct {
	TreeBase
	Ref   Term
	Stats []Stat
}

// PkgObject is `package object name { ... }`.
type PkgObject struct {
	TreeBase
	Mods  []Mod
	Name  *TermName
	Templ *Template
}

// DefnVal is `val pats: tpe = rhs`.
type DefnVal struct {
	TreeBase
	Mods []Mod
	Pats []Pat
	Tpe  Type // nil when inferred
	Rhs  Term
}

// DefnVar is `var pats: tpe = rhs`; Rhs nil means the `_` default initializer.
type DefnVar struct {
	TreeBase
	Mods []Mod
	Pats []Pat
	Tpe  Type
	Rhs  Term
}

// DefnDef is a method definition.
type DefnDef struct {
	TreeBase
	Mods    []Mod
	Name    *TermName
	Tparams []*TypeParam
	Paramss [][]*TermParam
	Tpe     Type // nil when inferred
	Body    Term
}

// DefnMacro is `def name = macro impl`.
type DefnMacro struct {
	TreeBase
	Mods    []Mod
	Name    *TermName
	Tparams []*TypeParam
	Paramss [][]*TermParam
	Tpe     Type
	Body    Term
}

// DefnType is `type T[...] = tpe`.
type DefnType struct {
	TreeBase
	Mods    []Mod
	Name    *TypeName
	Tparams []*TypeParam
	Bounds  *TypeBounds // for bounded opaque aliases
	Body    Type
}

// DefnClass is a class definition.
type DefnClass struct {
	TreeBase
	Mods    []Mod
	Name    *TypeName
	Tparams []*TypeParam
	Ctor    *CtorPrimary
	Templ   *Template
}

// DefnTrait is a trait definition.
type DefnTrait struct {
	TreeBase
	Mods    []Mod
	Name    *TypeName
	Tparams []*TypeParam
	Ctor    *CtorPrimary
	Templ   *Template
}

// DefnObject is an object definition.
type DefnObject struct {
	TreeBase
	Mods  []Mod
	Name  *TermName
	Templ *Template
}

// DefnEnum is an enum definition.
type DefnEnum struct {
	TreeBase
	Mods    []Mod
	Name    *TypeName
	Tparams []*TypeParam
	Ctor    *CtorPrimary
	Templ   *Template
}

// DefnEnumCase is `case Name(...) extends ...` inside an enum.
type DefnEnumCase struct {
	TreeBase
	Mods    []Mod
	Name    *TermName
	Tparams []*TypeParam
	Ctor    *CtorPrimary
	Inits   []*Init
}

// DefnRepeatedEnumCase is `case A, B, C` inside an enum.
type DefnRepeatedEnumCase struct {
	TreeBase
	Mods  []Mod
	Cases []*TermName
}

// DefnGiven is a structural given: `given name: T with { ... }`.
type DefnGiven struct {
	TreeBase
	Mods    []Mod
	Name    *Name // anonymous allowed
	Tparams []*TypeParam
	Sparams [][]*TermParam // using clauses
	Templ   *Template
}

// DefnGivenAlias is `given name: T = rhs`.
type DefnGivenAlias struct {
	TreeBase
	Mods    []Mod
	Name    *Name
	Tparams []*TypeParam
	Sparams [][]*TermParam
	Tpe     Type
	Rhs     Term
}

// DefnExtensionGroup is `extension (x: T) { defs }`.
type DefnExtensionGroup struct {
	TreeBase
	Tparams []*TypeParam
	Paramss [][]*TermParam
	Body    Stat // a single def or a block of defs
}

// DeclVal is `val name: tpe` with no right-hand side.
type DeclVal struct {
	TreeBase
	Mods []Mod
	Pats []Pat
	Tpe  Type
}

// DeclVar is `var name: tpe` with no right-hand side.
type DeclVar struct {
	TreeBase
	Mods []Mod
	Pats []Pat
	Tpe  Type
}

// DeclDef is an abstract method.
type DeclDef struct {
	TreeBase
	Mods    []Mod
	Name    *TermName
	Tparams []*TypeParam
	Paramss [][]*TermParam
	Tpe     Type
}

// DeclType is an abstract type member with bounds.
type DeclType struct {
	TreeBase
	Mods    []Mod
	Name    *TypeName
	Tparams []*TypeParam
	Bounds  *TypeBounds
}

// DeclGiven is `given name: T` with no body (abstract given; named only).
type DeclGiven struct {
	TreeBase
	Mods    []Mod
	Name    *Name
	Tparams []*TypeParam
	Sparams [][]*TermParam
	Tpe     Type
}

// Import is `import importers...`.
type Import struct {
	TreeBase
	Importers []*Importer
}

// Export is `export importers...`.
type Export struct {
	TreeBase
	Importers []*Importer
}

// Importer is `ref.{importees}`.
type Importer struct {
	TreeBase
	Ref       Term
	Importees []Importee
}

// ImporteeName imports a single name.
type ImporteeName struct {
	TreeBase
	Name *Name
}

// ImporteeRename is `name => rename` or `name as rename`.
type ImporteeRename struct {
	TreeBase
	Name   *Name
	Rename *Name
}

// ImporteeUnimport is `name => _` or `name as _`.
type ImporteeUnimport struct {
	TreeBase
	Name *Name
}

// ImporteeWildcard is `_` or `*`.
type ImporteeWildcard struct {
	TreeBase
}

// ImporteeGiven is `given T`.
type ImporteeGiven struct {
	TreeBase
	Tpe Type
}

// ImporteeGivenAll is `given`.
type ImporteeGivenAll struct {
	TreeBase
}

// CtorPrimary is the primary constructor of a class-like definition.
type CtorPrimary struct {
	TreeBase
	Mods    []Mod
	Name    *Name
	Paramss [][]*TermParam
}

// CtorSecondary is `def this(params) = { init; stats }`.
type CtorSecondary struct {
	TreeBase
	Mods    []Mod
	Name    *Name
	Paramss [][]*TermParam
	Init    *Init
	Stats   []Stat
}

// Init is a parent constructor invocation: tpe(argss...).
type Init struct {
	TreeBase
	Tpe   Type
	Name  *Name
	Argss [][]Term
}

// Template is the body of a class-like definition.
type Template struct {
	TreeBase
	Early   []Stat
	Inits   []*Init
	Self    *Self
	Stats   []Stat
	Derives []Type
}

// Self is the self-type annotation at the head of a template body.
type Self struct {
	TreeBase
	Name *Name
	Tpe  Type // nil when unascribed
}

// Case is `case pat if cond => body`.
type Case struct {
	TreeBase
	Pat  Pat
	Cond Term // nil when absent
	Body Term
}

// EnumeratorGenerator is `pat <- rhs`.
type EnumeratorGenerator struct {
	TreeBase
	Pat Pat
	Rhs Term
}

// EnumeratorCaseGenerator is `case pat <- rhs`.
type EnumeratorCaseGenerator struct {
	TreeBase
	Pat Pat
	Rhs Term
}

// EnumeratorGuard is `if cond`.
type EnumeratorGuard struct {
	TreeBase
	Cond Term
}

// EnumeratorVal is `pat = rhs`.
type EnumeratorVal struct {
	TreeBase
	Pat Pat
	Rhs Term
}

// Modifiers.

// ModAnnot is an annotation @init.
type ModAnnot struct {
	TreeBase
	Init *Init
}

// ModPrivate is private[within].
type ModPrivate struct {
	TreeBase
	Within *Name // anonymous when unqualified
}

// ModProtected is protected[within].
type ModProtected struct {
	TreeBase
	Within *Name
}

type ModImplicit struct{ TreeBase }
type ModFinal struct{ TreeBase }
type ModSealed struct{ TreeBase }
type ModOpen struct{ TreeBase }
type ModOverride struct{ TreeBase }
type ModCase struct{ TreeBase }
type ModAbstract struct{ TreeBase }
type ModLazy struct{ TreeBase }
type ModValParam struct{ TreeBase }
type ModVarParam struct{ TreeBase }
type ModCovariant struct{ TreeBase }
type ModContravariant struct{ TreeBase }
type ModInline struct{ TreeBase }
type ModInfix struct{ TreeBase }
type ModOpaque struct{ TreeBase }
type ModTransparent struct{ TreeBase }
type ModUsing struct{ TreeBase }
type ModErased struct{ TreeBase }

func (*Source) statNode()               {}
func (*MultiSource) statNode()          {}
func (*Pkg) statNode()                  {}
func (*PkgObject) statNode()            {}
func (*DefnVal) statNode()              {}
func (*DefnVar) statNode()              {}
func (*DefnDef) statNode()              {}
func (*DefnMacro) statNode()            {}
func (*DefnType) statNode()             {}
func (*DefnClass) statNode()            {}
func (*DefnTrait) statNode()            {}
func (*DefnObject) statNode()           {}
func (*DefnEnum) statNode()             {}
func (*DefnEnumCase) statNode()         {}
func (*DefnRepeatedEnumCase) statNode() {}
func (*DefnGiven) statNode()            {}
func (*DefnGivenAlias) statNode()       {}
func (*DefnExtensionGroup) statNode()   {}
func (*DeclVal) statNode()              {}
func (*DeclVar) statNode()              {}
func (*DeclDef) statNode()              {}
func (*DeclType) statNode()             {}
func (*DeclGiven) statNode()            {}
func (*Import) statNode()               {}
func (*Export) statNode()               {}
func (*CtorSecondary) statNode()        {}

func (*CtorPrimary) ctorNode()   {}
func (*CtorSecondary) ctorNode() {}

func (*ImporteeName) importeeNode()     {}
func (*ImporteeRename) importeeNode()   {}
func (*ImporteeUnimport) importeeNode() {}
func (*ImporteeWildcard) importeeNode() {}
func (*ImporteeGiven) importeeNode()    {}
func (*ImporteeGivenAll) importeeNode() {}

func (*EnumeratorGenerator) enumeratorNode()     {}
func (*EnumeratorCaseGenerator) enumeratorNode() {}
func (*EnumeratorGuard) enumeratorNode()         {}
func (*EnumeratorVal) enumeratorNode()           {}

func (*ModAnnot) modNode()         {}
func (*ModPrivate) modNode()       {}
func (*ModProtected) modNode()     {}
func (*ModImplicit) modNode()      {}
func (*ModFinal) modNode()         {}
func (*ModSealed) modNode()        {}
func (*ModOpen) modNode()          {}
func (*ModOverride) modNode()      {}
func (*ModCase) modNode()          {}
func (*ModAbstract) modNode()      {}
func (*ModLazy) modNode()          {}
func (*ModValParam) modNode()      {}
func (*ModVarParam) modNode()      {}
func (*ModCovariant) modNode()     {}
func (*ModContravariant) modNode() {}
func (*ModInline) modNode()        {}
func (*ModInfix) modNode()         {}
func (*ModOpaque) modNode()        {}
func (*ModTransparent) modNode()   {}
func (*ModUsing) modNode()         {}
func (*ModErased) modNode()        {}
