package ast

import "github.com/Warbo/python-decompiler/pkg/common"

// Node is a syntax tree node. The set of implementations is closed: only
// the types in this package satisfy it.
type Node interface {
	Tag() Tag
	node()
}

// Module is a whole source file.
type Module struct {
	Doc  common.Option[string]
	Body *Stmt
}

// Stmt is a sequence of statements at one indentation level.
type Stmt struct {
	Nodes []Node
}

// Assign assigns one value to one or more targets, `a = b = e`.
type Assign struct {
	Targets []Node
	Expr    Node
}

// AugAssign is `x += e`; Op is the operator text including `=`.
type AugAssign struct {
	Target Node
	Op     string
	Expr   Node
}

// AssName is a name in store or delete position.
type AssName struct {
	Name string
}

// AssAttr is an attribute in store or delete position.
type AssAttr struct {
	Expr Node
	Attr string
}

type AssTuple struct {
	Nodes []Node
}

type AssList struct {
	Nodes []Node
}

type Delete struct {
	Targets []Node
}

// Discard is an expression evaluated for its effect.
type Discard struct {
	Expr Node
}

type Pass struct{}

type Break struct{}

type Continue struct{}

type Return struct {
	Value common.Option[Node]
}

type Yield struct {
	Value common.Option[Node]
}

// If is an if statement; every Branch after the first is an elif.
type If struct {
	Tests []*Branch
	Else  common.Option[Node]
}

// Branch is one guarded body of an If.
type Branch struct {
	Test Node
	Body *Stmt
}

// IfExp is the conditional expression `Then if Test else Else`.
type IfExp struct {
	Test Node
	Then Node
	Else Node
}

type While struct {
	Test Node
	Body *Stmt
	Else common.Option[Node]
}

type For struct {
	Assign Node
	Iter   Node
	Body   *Stmt
	Else   common.Option[Node]
}

type With struct {
	Expr Node
	Vars common.Option[Node]
	Body *Stmt
}

// Function is a def statement. Argnames lists every parameter name in
// surface order, with the varargs and kwargs names last when those flags are
// set; Defaults belong to the trailing positional names.
type Function struct {
	Decorators []Node
	Name       string
	Argnames   []string
	Defaults   []Node
	Varargs    bool
	Kwargs     bool
	Doc        common.Option[string]
	Code       *Stmt
}

// Lambda is an anonymous function. Parameters are laid out as in Function.
type Lambda struct {
	Argnames []string
	Defaults []Node
	Varargs  bool
	Kwargs   bool
	Code     Node
}

type Class struct {
	Decorators []Node
	Name       string
	Bases      []Node
	Doc        common.Option[string]
	Code       *Stmt
}

type TryExcept struct {
	Body     *Stmt
	Handlers []*Handler
	Else     common.Option[Node]
}

// Handler is an except clause. Name, when present, is the target bound by `as`.
type Handler struct {
	Type common.Option[Node]
	Name common.Option[Node]
	Body *Stmt
}

// TryFinally is a try statement with a finally clause. Body is either a Stmt or a TryExcept.
type TryFinally struct {
	Body  Node
	Final *Stmt
}

type Raise struct {
	Exc   common.Option[Node]
	Cause common.Option[Node]
}

type Assert struct {
	Test Node
	Fail common.Option[Node]
}

type Global struct {
	Names []string
}

type Import struct {
	Names []*Alias
}

// From is `from ..Module import names`; Level counts the leading dots.
type From struct {
	Module string
	Level  int
	Names  []*Alias
}

// Alias is an imported name with its optional `as` rename.
type Alias struct {
	Name   string
	AsName common.Option[string]
}

// Name is a name in load position.
type Name struct {
	Name string
}

// Const is a literal constant.
type Const struct {
	Value Literal
}

type Getattr struct {
	Expr Node
	Attr string
}

// CallFunc is a call. Args may contain Keyword nodes.
type CallFunc struct {
	Func      Node
	Args      []Node
	StarArgs  common.Option[Node]
	DstarArgs common.Option[Node]
}

type Keyword struct {
	Name string
	Expr Node
}

// Subscript is `Expr[Subs...]`. It loads, stores or deletes depending on
// where it appears.
type Subscript struct {
	Expr Node
	Subs []Node
}

// Slice is `Expr[Lower:Upper]`.
type Slice struct {
	Expr  Node
	Lower common.Option[Node]
	Upper common.Option[Node]
}

type Tuple struct {
	Nodes []Node
}

type List struct {
	Nodes []Node
}

type Dict struct {
	Items []*DictItem
}

type DictItem struct {
	Key   Node
	Value Node
}

type And struct {
	Nodes []Node
}

type Or struct {
	Nodes []Node
}

type Not struct {
	Expr Node
}

// Compare is a comparison chain `Expr op1 e1 op2 e2 ...`.
type Compare struct {
	Expr Node
	Ops  []*CompareOp
}

// CompareOp is one link of a comparison chain; Op is the operator text, e.g. `<` or `not in`.
type CompareOp struct {
	Op   string
	Expr Node
}

// Binary operators.
type (
	Add        struct{ Left, Right Node }
	Sub        struct{ Left, Right Node }
	Mul        struct{ Left, Right Node }
	Div        struct{ Left, Right Node }
	FloorDiv   struct{ Left, Right Node }
	Mod        struct{ Left, Right Node }
	Power      struct{ Left, Right Node }
	LeftShift  struct{ Left, Right Node }
	RightShift struct{ Left, Right Node }
)

// Bitwise operators are n-ary, like And and Or.
type (
	Bitand struct{ Nodes []Node }
	Bitor  struct{ Nodes []Node }
	Bitxor struct{ Nodes []Node }
)

type (
	UnaryAdd struct{ Expr Node }
	UnarySub struct{ Expr Node }
	Invert   struct{ Expr Node }
)
