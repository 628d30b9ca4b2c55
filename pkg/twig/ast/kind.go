package ast

// Kind identifies the syntactic category of a node.
type Kind string

const (
	// KindAny is the wildcard kind. No node carries it; rule registries use
	// it to attach a rule to every node.
	KindAny Kind = "*"

	// Generic containers.
	KindTemplate Kind = "template"
	KindBody     Kind = "body"
	KindText     Kind = "text"

	// Statements.
	KindPrint      Kind = "print"
	KindSet        Kind = "set"
	KindIf         Kind = "if"
	KindDo         Kind = "do"
	KindFlush      Kind = "flush"
	KindBlock      Kind = "block"
	KindTrans      Kind = "trans"
	KindApply      Kind = "apply"
	KindWith       Kind = "with"
	KindAutoescape Kind = "autoescape"

	// Macros.
	KindMacro  Kind = "macro"
	KindImport Kind = "import"
	KindFrom   Kind = "from"

	// Loops.
	KindFor Kind = "for"

	// Extension and embedding.
	KindSandbox Kind = "sandbox"
	KindInclude Kind = "include"
	KindEmbed   Kind = "embed"
	KindExtends Kind = "extends"

	// Expressions.
	KindConstant      Kind = "constant"
	KindName          Kind = "name"
	KindAssignName    Kind = "assign_name"
	KindArray         Kind = "array"
	KindHash          Kind = "hash"
	KindPair          Kind = "pair"
	KindArguments     Kind = "arguments"
	KindTargets       Kind = "targets"
	KindNamedArgument Kind = "named_argument"
	KindFilter        Kind = "filter"
	KindFunction      Kind = "function"
	KindTest          Kind = "test"
	KindConditional   Kind = "conditional"
	KindBinary        Kind = "binary"
	KindUnary         Kind = "unary"
	KindGetAttr       Kind = "get_attr"
	KindArrow         Kind = "arrow"
	KindSpread        Kind = "spread"
)

// Family groups kinds into the categories rules are written against.
type Family string

const (
	FamilyGeneric     Family = "generic"
	FamilyStatement   Family = "statement"
	FamilyLoop        Family = "loop"
	FamilyEmbedding   Family = "embedding"
	FamilyCall        Family = "call"
	FamilyFilter      Family = "filter"
	FamilyConditional Family = "conditional"
	FamilyTest        Family = "test"
	FamilyName        Family = "name"
	FamilyAttribute   Family = "attribute"
	FamilyConstant    Family = "constant"
)

// Family returns the family the kind belongs to.
func (k Kind) Family() Family {
	switch k {
	case KindPrint, KindSet, KindIf, KindDo, KindFlush, KindBlock, KindTrans,
		KindApply, KindWith, KindAutoescape, KindMacro, KindImport, KindFrom:
		return FamilyStatement
	case KindFor:
		return FamilyLoop
	case KindSandbox, KindInclude, KindEmbed, KindExtends:
		return FamilyEmbedding
	case KindFunction:
		return FamilyCall
	case KindFilter:
		return FamilyFilter
	case KindConditional:
		return FamilyConditional
	case KindTest:
		return FamilyTest
	case KindName, KindAssignName:
		return FamilyName
	case KindGetAttr:
		return FamilyAttribute
	case KindConstant, KindText:
		return FamilyConstant
	default:
		return FamilyGeneric
	}
}

// IsExpression reports whether nodes of this kind produce a value.
func (k Kind) IsExpression() bool {
	switch k {
	case KindConstant, KindName, KindArray, KindHash, KindFilter, KindFunction,
		KindTest, KindConditional, KindBinary, KindUnary, KindGetAttr, KindArrow,
		KindSpread:
		return true
	}
	return false
}
