package ast

// PatVar is a pattern variable binding (lowercase identifier).
type PatVar struct {
	TreeBase
	Name *TermName
}

// PatWildcard is the _ pattern.
type PatWildcard struct {
	TreeBase
}

// PatSeqWildcard is the _* sequence wildcard.
type PatSeqWildcard struct {
	TreeBase
}

// PatBind is lhs @ rhs.
type PatBind struct {
	TreeBase
	Lhs Pat
	Rhs Pat
}

// PatAlternative is lhs | rhs.
type PatAlternative struct {
	TreeBase
	Lhs Pat
	Rhs Pat
}

// PatTuple is (a, b, ...). Always two or more elements.
type PatTuple struct {
	TreeBase
	Args []Pat
}

// PatExtract is fun[targs...](args...).
type PatExtract struct {
	TreeBase
	Fun   Term
	Targs []Type
	Args  []Pat
}

// PatExtractInfix is lhs op (rhs...).
type PatExtractInfix struct {
	TreeBase
	Lhs Pat
	Op  *TermName
	Rhs []Pat
}

// PatTyped is pat: tpe.
type PatTyped struct {
	TreeBase
	Lhs Pat
	Rhs Type
}

// PatInterpolate is id"parts${pats}parts" in pattern position.
type PatInterpolate struct {
	TreeBase
	Prefix *TermName
	Parts  []*Lit
	Args   []Pat
}

// PatXml is an XML pattern with spliced sub-patterns.
type PatXml struct {
	TreeBase
	Parts []*Lit
	Args  []Pat
}

// PatSelect is a stable reference used as a pattern (a.b.C).
type PatSelect struct {
	TreeBase
	Ref Term
}

// PatMacroQuote is '{...} in pattern position.
type PatMacroQuote struct {
	TreeBase
	Body Tree
}

// PatMacroSplice is ${...} in pattern position.
type PatMacroSplice struct {
	TreeBase
	Body Tree
}

// PatGiven is `given T` in pattern position.
type PatGiven struct {
	TreeBase
	Tpe Type
}

// PatRepeated is `name*`, the postfix vararg binding.
type PatRepeated struct {
	TreeBase
	Name *TermName
}

func (*PatVar) patNode()          {}
func (*PatWildcard) patNode()     {}
func (*PatSeqWildcard) patNode()  {}
func (*PatBind) patNode()         {}
func (*PatAlternative) patNode()  {}
func (*PatTuple) patNode()        {}
func (*PatExtract) patNode()      {}
func (*PatExtractInfix) patNode() {}
func (*PatTyped) patNode()        {}
func (*PatInterpolate) patNode()  {}
func (*PatXml) patNode()          {}
func (*PatSelect) patNode()       {}
func (*PatMacroQuote) patNode()   {}
func (*PatMacroSplice) patNode()  {}
func (*PatGiven) patNode()        {}
func (*PatRepeated) patNode()     {}
