package ast

// TypeName is an identifier in type position.
type TypeName struct {
	TreeBase
	Value string
}

// TypeSelect is ref.Name (a path-dependent type reference).
type TypeSelect struct {
	TreeBase
	Qual Term
	Name *TypeName
}

// TypeProject is Tpe#Name.
type TypeProject struct {
	TreeBase
	Qual Type
	Name *TypeName
}

// TypeSingleton is path.type.
type TypeSingleton struct {
	TreeBase
	Ref Term
}

// TypeApply is Tpe[args...].
type TypeApply struct {
	TreeBase
	Tpe  Type
	Args []Type
}

// TypeApplyInfix is lhs op rhs, including & and | in dialects where they
// are plain operators.
type TypeApplyInfix struct {
	TreeBase
	Lhs Type
	Op  *TypeName
	Rhs Type
}

// TypeAnd is A & B (intersection).
type TypeAnd struct {
	TreeBase
	Lhs Type
	Rhs Type
}

// TypeOr is A | B (union).
type TypeOr struct {
	TreeBase
	Lhs Type
	Rhs Type
}

// TypeWith is A with B.
type TypeWith struct {
	TreeBase
	Lhs Type
	Rhs Type
}

// TypeFunction is (params...) => res.
type TypeFunction struct {
	TreeBase
	Params []Type
	Res    Type
}

// TypeContextFunction is (params...) ?=> res.
type TypeContextFunction struct {
	TreeBase
	Params []Type
	Res    Type
}

// TypeDependentFunction is (name: Tpe, ...) => res.
type TypeDependentFunction struct {
	TreeBase
	Params []*TermParam
	Res    Type
}

// TypePolyFunction is [tparams...] => res (res must be a function type).
type TypePolyFunction struct {
	TreeBase
	Tparams []*TypeParam
	Res     Type
}

// TypeLambda is [tparams...] =>> body.
type TypeLambda struct {
	TreeBase
	Tparams []*TypeParam
	Body    Type
}

// TypeTuple is (a, b, ...). Always two or more elements.
type TypeTuple struct {
	TreeBase
	Args []Type
}

// TypeRefine is tpe { stats... }; tpe may be nil for a bare refinement.
type TypeRefine struct {
	TreeBase
	Tpe   Type
	Stats []Stat
}

// TypeExistential is tpe forSome { stats... }.
type TypeExistential struct {
	TreeBase
	Tpe   Type
	Stats []Stat
}

// TypeAnnotate is tpe @annot...
type TypeAnnotate struct {
	TreeBase
	Tpe    Type
	Annots []Mod
}

// TypeWildcard is _ or ? with optional bounds.
type TypeWildcard struct {
	TreeBase
	Bounds *TypeBounds
}

// TypeByName is => tpe (parameter position only).
type TypeByName struct {
	TreeBase
	Tpe Type
}

// TypeRepeated is tpe* (parameter position only).
type TypeRepeated struct {
	TreeBase
	Tpe Type
}

// TypeVar is a type variable inside a pattern type (lowercase name).
type TypeVar struct {
	TreeBase
	Name *TypeName
}

// TypeMatch is tpe match { cases... }.
type TypeMatch struct {
	TreeBase
	Tpe   Type
	Cases []*TypeCase
}

// TypeBlock is a block of type definitions ending in a type (match type
// alias bodies under significant indentation).
type TypeBlock struct {
	TreeBase
	TypeDefs []Stat
	Tpe      Type
}

// TypeBounds holds the optional lower/upper/view/context bounds of a type
// parameter or wildcard.
type TypeBounds struct {
	TreeBase
	Lo Type // nil when absent
	Hi Type // nil when absent
}

// TypeParam is a single type parameter.
type TypeParam struct {
	TreeBase
	Mods    []Mod
	Name    *Name // anonymous for _
	Tparams []*TypeParam
	Bounds  *TypeBounds
	Vbounds []Type // view bounds <%
	Cbounds []Type // context bounds :
}

// TypeCase is `case pat => tpe` inside a match type.
type TypeCase struct {
	TreeBase
	Pat  Type
	Body Type
}

func (*TypeName) typeNode()              {}
func (*TypeSelect) typeNode()            {}
func (*TypeProject) typeNode()           {}
func (*TypeSingleton) typeNode()         {}
func (*TypeApply) typeNode()             {}
func (*TypeApplyInfix) typeNode()        {}
func (*TypeAnd) typeNode()               {}
func (*TypeOr) typeNode()                {}
func (*TypeWith) typeNode()              {}
func (*TypeFunction) typeNode()          {}
func (*TypeContextFunction) typeNode()   {}
func (*TypeDependentFunction) typeNode() {}
func (*TypePolyFunction) typeNode()      {}
func (*TypeLambda) typeNode()            {}
func (*TypeTuple) typeNode()             {}
func (*TypeRefine) typeNode()            {}
func (*TypeExistential) typeNode()       {}
func (*TypeAnnotate) typeNode()          {}
func (*TypeWildcard) typeNode()          {}
func (*TypeByName) typeNode()            {}
func (*TypeRepeated) typeNode()          {}
func (*TypeVar) typeNode()               {}
func (*TypeMatch) typeNode()             {}
func (*TypeBlock) typeNode()             {}
