package ast

// Children returns the direct child nodes of t in source order. Nil children
// are omitted.
func Children(t Tree) []Tree {
	var out []Tree
	add := func(ts ...Tree) {
		for _, c := range ts {
			if c != nil && !isNilTree(c) {
				out = append(out, c)
			}
		}
	}
	addTerms := func(ts []Term) {
		for _, c := range ts {
			add(c)
		}
	}
	addTypes := func(ts []Type) {
		for _, c := range ts {
			add(c)
		}
	}
	addPats := func(ts []Pat) {
		for _, c := range ts {
			add(c)
		}
	}
	addStats := func(ts []Stat) {
		for _, c := range ts {
			add(c)
		}
	}
	addMods := func(ts []Mod) {
		for _, c := range ts {
			add(c)
		}
	}
	addTparams := func(ts []*TypeParam) {
		for _, c := range ts {
			add(c)
		}
	}
	addParamss := func(pss [][]*TermParam) {
		for _, ps := range pss {
			for _, c := range ps {
				add(c)
			}
		}
	}
	addCases := func(cs []*Case) {
		for _, c := range cs {
			add(c)
		}
	}
	addInits := func(is []*Init) {
		for _, c := range is {
			add(c)
		}
	}
	addLits := func(ls []*Lit) {
		for _, c := range ls {
			add(c)
		}
	}

	switch n := t.(type) {
	case *Lit, *Quasi, *Name, *TermName, *TypeName, *TermThis, *TermSuper,
		*TermPlaceholder, *PatWildcard, *PatSeqWildcard, *ImporteeWildcard,
		*ImporteeGivenAll, *TermEndMarker:
	case *TermSelect:
		add(n.Qual, n.Name)
	case *TermApply:
		add(n.Fun)
		addTerms(n.Args)
	case *TermApplyUsing:
		add(n.Fun)
		addTerms(n.Args)
	case *TermApplyType:
		add(n.Fun)
		addTypes(n.Targs)
	case *TermApplyInfix:
		add(n.Lhs, n.Op)
		addTypes(n.Targs)
		addTerms(n.Args)
	case *TermApplyUnary:
		add(n.Op, n.Arg)
	case *TermAssign:
		add(n.Lhs, n.Rhs)
	case *TermReturn:
		add(n.Expr)
	case *TermThrow:
		add(n.Expr)
	case *TermAscribe:
		add(n.Expr, n.Tpe)
	case *TermAnnotate:
		add(n.Expr)
		addMods(n.Annots)
	case *TermTuple:
		addTerms(n.Args)
	case *TermBlock:
		addStats(n.Stats)
	case *TermIf:
		addMods(n.Mods)
		add(n.Cond, n.Thenp, n.Elsep)
	case *TermMatch:
		addMods(n.Mods)
		add(n.Expr)
		addCases(n.Cases)
	case *TermTry:
		add(n.Expr)
		addCases(n.Catchp)
		add(n.Finallyp)
	case *TermTryWithHandler:
		add(n.Expr, n.Catchp, n.Finallyp)
	case *TermFunction:
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *TermContextFunction:
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *TermPolyFunction:
		addTparams(n.Tparams)
		add(n.Body)
	case *TermPartialFunction:
		addCases(n.Cases)
	case *TermWhile:
		add(n.Cond, n.Body)
	case *TermDo:
		add(n.Body, n.Cond)
	case *TermFor:
		for _, e := range n.Enums {
			add(e)
		}
		add(n.Body)
	case *TermForYield:
		for _, e := range n.Enums {
			add(e)
		}
		add(n.Body)
	case *TermNew:
		add(n.Init)
	case *TermNewAnonymous:
		add(n.Templ)
	case *TermEta:
		add(n.Expr)
	case *TermRepeated:
		add(n.Expr)
	case *TermInterpolate:
		add(n.Prefix)
		addLits(n.Parts)
		addTerms(n.Args)
	case *TermXml:
		addLits(n.Parts)
		addTerms(n.Args)
	case *TermQuotedMacro:
		add(n.Body)
	case *TermSplicedMacro:
		add(n.Body)
	case *TermParam:
		addMods(n.Mods)
		add(n.Name, n.Tpe, n.Default)

	case *TypeSelect:
		add(n.Qual, n.Name)
	case *TypeProject:
		add(n.Qual, n.Name)
	case *TypeSingleton:
		add(n.Ref)
	case *TypeApply:
		add(n.Tpe)
		addTypes(n.Args)
	case *TypeApplyInfix:
		add(n.Lhs, n.Op, n.Rhs)
	case *TypeAnd:
		add(n.Lhs, n.Rhs)
	case *TypeOr:
		add(n.Lhs, n.Rhs)
	case *TypeWith:
		add(n.Lhs, n.Rhs)
	case *TypeFunction:
		addTypes(n.Params)
		add(n.Res)
	case *TypeContextFunction:
		addTypes(n.Params)
		add(n.Res)
	case *TypeDependentFunction:
		for _, p := range n.Params {
			add(p)
		}
		add(n.Res)
	case *TypePolyFunction:
		addTparams(n.Tparams)
		add(n.Res)
	case *TypeLambda:
		addTparams(n.Tparams)
		add(n.Body)
	case *TypeTuple:
		addTypes(n.Args)
	case *TypeRefine:
		add(n.Tpe)
		addStats(n.Stats)
	case *TypeExistential:
		add(n.Tpe)
		addStats(n.Stats)
	case *TypeAnnotate:
		add(n.Tpe)
		addMods(n.Annots)
	case *TypeWildcard:
		add(n.Bounds)
	case *TypeByName:
		add(n.Tpe)
	case *TypeRepeated:
		add(n.Tpe)
	case *TypeVar:
		add(n.Name)
	case *TypeMatch:
		add(n.Tpe)
		for _, c := range n.Cases {
			add(c)
		}
	case *TypeBlock:
		addStats(n.TypeDefs)
		add(n.Tpe)
	case *TypeBounds:
		add(n.Lo, n.Hi)
	case *TypeParam:
		addMods(n.Mods)
		add(n.Name)
		addTparams(n.Tparams)
		add(n.Bounds)
		addTypes(n.Vbounds)
		addTypes(n.Cbounds)
	case *TypeCase:
		add(n.Pat, n.Body)

	case *PatVar:
		add(n.Name)
	case *PatBind:
		add(n.Lhs, n.Rhs)
	case *PatAlternative:
		add(n.Lhs, n.Rhs)
	case *PatTuple:
		addPats(n.Args)
	case *PatExtract:
		add(n.Fun)
		addTypes(n.Targs)
		addPats(n.Args)
	case *PatExtractInfix:
		add(n.Lhs, n.Op)
		addPats(n.Rhs)
	case *PatTyped:
		add(n.Lhs, n.Rhs)
	case *PatInterpolate:
		add(n.Prefix)
		addLits(n.Parts)
		addPats(n.Args)
	case *PatXml:
		addLits(n.Parts)
		addPats(n.Args)
	case *PatSelect:
		add(n.Ref)
	case *PatMacroQuote:
		add(n.Body)
	case *PatMacroSplice:
		add(n.Body)
	case *PatGiven:
		add(n.Tpe)
	case *PatRepeated:
		add(n.Name)

	case *Source:
		addStats(n.Stats)
	case *MultiSource:
		for _, s := range n.Sources {
			add(s)
		}
	case *Pkg:
		add(n.Ref)
		addStats(n.Stats)
	case *PkgObject:
		addMods(n.Mods)
		add(n.Name, n.Templ)
	case *DefnVal:
		addMods(n.Mods)
		addPats(n.Pats)
		add(n.Tpe, n.Rhs)
	case *DefnVar:
		addMods(n.Mods)
		addPats(n.Pats)
		add(n.Tpe, n.Rhs)
	case *DefnDef:
		addMods(n.Mods)
		add(n.Name)
		addTparams(n.Tparams)
		addParamss(n.Paramss)
		add(n.Tpe, n.Body)
	case *DefnMacro:
		addMods(n.Mods)
		add(n.Name)
		addTparams(n.Tparams)
		addParamss(n.Paramss)
		add(n.Tpe, n.Body)
	case *DefnType:
		addMods(n.Mods)
		add(n.Name)
		addTparams(n.Tparams)
		add(n.Bounds, n.Body)
	case *DefnClass:
		addMods(n.Mods)
		add(n.Name)
		addTparams(n.Tparams)
		add(n.Ctor, n.Templ)
	case *DefnTrait:
		addMods(n.Mods)
		add(n.Name)
		addTparams(n.Tparams)
		add(n.Ctor, n.Templ)
	case *DefnObject:
		addMods(n.Mods)
		add(n.Name, n.Templ)
	case *DefnEnum:
		addMods(n.Mods)
		add(n.Name)
		addTparams(n.Tparams)
		add(n.Ctor, n.Templ)
	case *DefnEnumCase:
		addMods(n.Mods)
		add(n.Name)
		addTparams(n.Tparams)
		add(n.Ctor)
		addInits(n.Inits)
	case *DefnRepeatedEnumCase:
		addMods(n.Mods)
		for _, c := range n.Cases {
			add(c)
		}
	case *DefnGiven:
		addMods(n.Mods)
		add(n.Name)
		addTparams(n.Tparams)
		addParamss(n.Sparams)
		add(n.Templ)
	case *DefnGivenAlias:
		addMods(n.Mods)
		add(n.Name)
		addTparams(n.Tparams)
		addParamss(n.Sparams)
		add(n.Tpe, n.Rhs)
	case *DefnExtensionGroup:
		addTparams(n.Tparams)
		addParamss(n.Paramss)
		add(n.Body)
	case *DeclVal:
		addMods(n.Mods)
		addPats(n.Pats)
		add(n.Tpe)
	case *DeclVar:
		addMods(n.Mods)
		addPats(n.Pats)
		add(n.Tpe)
	case *DeclDef:
		addMods(n.Mods)
		add(n.Name)
		addTparams(n.Tparams)
		addParamss(n.Paramss)
		add(n.Tpe)
	case *DeclType:
		addMods(n.Mods)
		add(n.Name)
		addTparams(n.Tparams)
		add(n.Bounds)
	case *DeclGiven:
		addMods(n.Mods)
		add(n.Name)
		addTparams(n.Tparams)
		addParamss(n.Sparams)
		add(n.Tpe)
	case *Import:
		for _, i := range n.Importers {
			add(i)
		}
	case *Export:
		for _, i := range n.Importers {
			add(i)
		}
	case *Importer:
		add(n.Ref)
		for _, i := range n.Importees {
			add(i)
		}
	case *ImporteeName:
		add(n.Name)
	case *ImporteeRename:
		add(n.Name, n.Rename)
	case *ImporteeUnimport:
		add(n.Name)
	case *ImporteeGiven:
		add(n.Tpe)
	case *CtorPrimary:
		addMods(n.Mods)
		add(n.Name)
		addParamss(n.Paramss)
	case *CtorSecondary:
		addMods(n.Mods)
		add(n.Name)
		addParamss(n.Paramss)
		add(n.Init)
		addStats(n.Stats)
	case *Init:
		add(n.Tpe, n.Name)
		for _, args := range n.Argss {
			addTerms(args)
		}
	case *Template:
		addStats(n.Early)
		addInits(n.Inits)
		add(n.Self)
		addStats(n.Stats)
		addTypes(n.Derives)
	case *Self:
		add(n.Name, n.Tpe)
	case *Case:
		add(n.Pat, n.Cond, n.Body)
	case *EnumeratorGenerator:
		add(n.Pat, n.Rhs)
	case *EnumeratorCaseGenerator:
		add(n.Pat, n.Rhs)
	case *EnumeratorGuard:
		add(n.Cond)
	case *EnumeratorVal:
		add(n.Pat, n.Rhs)
	case *ModAnnot:
		add(n.Init)
	case *ModPrivate:
		add(n.Within)
	case *ModProtected:
		add(n.Within)
	}
	return out
}

// Walk traverses t depth-first in source order, calling fn for every node.
// If fn returns false for a node its children are skipped.
func Walk(t Tree, fn func(Tree) bool) {
	if t == nil || isNilTree(t) {
		return
	}
	if !fn(t) {
		return
	}
	for _, c := range Children(t) {
		Walk(c, fn)
	}
}

// isNilTree guards against typed-nil interface values coming out of
// optional fields.
func isNilTree(t Tree) bool {
	switch n := t.(type) {
	case *Lit:
		return n == nil
	case *Name:
		return n == nil
	case *TermName:
		return n == nil
	case *TypeName:
		return n == nil
	case *TypeBounds:
		return n == nil
	case *Self:
		return n == nil
	case *Init:
		return n == nil
	case *CtorPrimary:
		return n == nil
	case *Template:
		return n == nil
	case *TermParam:
		return n == nil
	case *TypeParam:
		return n == nil
	}
	return false
}
