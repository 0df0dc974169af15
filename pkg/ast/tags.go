package ast

// Tag names a node variant. It is the Go type name of the variant.
type Tag string

const (
	TagModule     Tag = "Module"
	TagStmt       Tag = "Stmt"
	TagAssign     Tag = "Assign"
	TagAugAssign  Tag = "AugAssign"
	TagAssName    Tag = "AssName"
	TagAssAttr    Tag = "AssAttr"
	TagAssTuple   Tag = "AssTuple"
	TagAssList    Tag = "AssList"
	TagDelete     Tag = "Delete"
	TagDiscard    Tag = "Discard"
	TagPass       Tag = "Pass"
	TagBreak      Tag = "Break"
	TagContinue   Tag = "Continue"
	TagReturn     Tag = "Return"
	TagYield      Tag = "Yield"
	TagIf         Tag = "If"
	TagBranch     Tag = "Branch"
	TagIfExp      Tag = "IfExp"
	TagWhile      Tag = "While"
	TagFor        Tag = "For"
	TagWith       Tag = "With"
	TagFunction   Tag = "Function"
	TagLambda     Tag = "Lambda"
	TagClass      Tag = "Class"
	TagTryExcept  Tag = "TryExcept"
	TagHandler    Tag = "Handler"
	TagTryFinally Tag = "TryFinally"
	TagRaise      Tag = "Raise"
	TagAssert     Tag = "Assert"
	TagGlobal     Tag = "Global"
	TagImport     Tag = "Import"
	TagFrom       Tag = "From"
	TagAlias      Tag = "Alias"
	TagName       Tag = "Name"
	TagConst      Tag = "Const"
	TagGetattr    Tag = "Getattr"
	TagCallFunc   Tag = "CallFunc"
	TagKeyword    Tag = "Keyword"
	TagSubscript  Tag = "Subscript"
	TagSlice      Tag = "Slice"
	TagTuple      Tag = "Tuple"
	TagList       Tag = "List"
	TagDict       Tag = "Dict"
	TagDictItem   Tag = "DictItem"
	TagAnd        Tag = "And"
	TagOr         Tag = "Or"
	TagNot        Tag = "Not"
	TagCompare    Tag = "Compare"
	TagCompareOp  Tag = "CompareOp"
	TagAdd        Tag = "Add"
	TagSub        Tag = "Sub"
	TagMul        Tag = "Mul"
	TagDiv        Tag = "Div"
	TagFloorDiv   Tag = "FloorDiv"
	TagMod        Tag = "Mod"
	TagPower      Tag = "Power"
	TagLeftShift  Tag = "LeftShift"
	TagRightShift Tag = "RightShift"
	TagBitand     Tag = "Bitand"
	TagBitor      Tag = "Bitor"
	TagBitxor     Tag = "Bitxor"
	TagUnaryAdd   Tag = "UnaryAdd"
	TagUnarySub   Tag = "UnarySub"
	TagInvert     Tag = "Invert"
)

var prototypes = map[Tag]func() Node{
	TagModule:     func() Node { return &Module{} },
	TagStmt:       func() Node { return &Stmt{} },
	TagAssign:     func() Node { return &Assign{} },
	TagAugAssign:  func() Node { return &AugAssign{} },
	TagAssName:    func() Node { return &AssName{} },
	TagAssAttr:    func() Node { return &AssAttr{} },
	TagAssTuple:   func() Node { return &AssTuple{} },
	TagAssList:    func() Node { return &AssList{} },
	TagDelete:     func() Node { return &Delete{} },
	TagDiscard:    func() Node { return &Discard{} },
	TagPass:       func() Node { return &Pass{} },
	TagBreak:      func() Node { return &Break{} },
	TagContinue:   func() Node { return &Continue{} },
	TagReturn:     func() Node { return &Return{} },
	TagYield:      func() Node { return &Yield{} },
	TagIf:         func() Node { return &If{} },
	TagBranch:     func() Node { return &Branch{} },
	TagIfExp:      func() Node { return &IfExp{} },
	TagWhile:      func() Node { return &While{} },
	TagFor:        func() Node { return &For{} },
	TagWith:       func() Node { return &With{} },
	TagFunction:   func() Node { return &Function{} },
	TagLambda:     func() Node { return &Lambda{} },
	TagClass:      func() Node { return &Class{} },
	TagTryExcept:  func() Node { return &TryExcept{} },
	TagHandler:    func() Node { return &Handler{} },
	TagTryFinally: func() Node { return &TryFinally{} },
	TagRaise:      func() Node { return &Raise{} },
	TagAssert:     func() Node { return &Assert{} },
	TagGlobal:     func() Node { return &Global{} },
	TagImport:     func() Node { return &Import{} },
	TagFrom:       func() Node { return &From{} },
	TagAlias:      func() Node { return &Alias{} },
	TagName:       func() Node { return &Name{} },
	TagConst:      func() Node { return &Const{} },
	TagGetattr:    func() Node { return &Getattr{} },
	TagCallFunc:   func() Node { return &CallFunc{} },
	TagKeyword:    func() Node { return &Keyword{} },
	TagSubscript:  func() Node { return &Subscript{} },
	TagSlice:      func() Node { return &Slice{} },
	TagTuple:      func() Node { return &Tuple{} },
	TagList:       func() Node { return &List{} },
	TagDict:       func() Node { return &Dict{} },
	TagDictItem:   func() Node { return &DictItem{} },
	TagAnd:        func() Node { return &And{} },
	TagOr:         func() Node { return &Or{} },
	TagNot:        func() Node { return &Not{} },
	TagCompare:    func() Node { return &Compare{} },
	TagCompareOp:  func() Node { return &CompareOp{} },
	TagAdd:        func() Node { return &Add{} },
	TagSub:        func() Node { return &Sub{} },
	TagMul:        func() Node { return &Mul{} },
	TagDiv:        func() Node { return &Div{} },
	TagFloorDiv:   func() Node { return &FloorDiv{} },
	TagMod:        func() Node { return &Mod{} },
	TagPower:      func() Node { return &Power{} },
	TagLeftShift:  func() Node { return &LeftShift{} },
	TagRightShift: func() Node { return &RightShift{} },
	TagBitand:     func() Node { return &Bitand{} },
	TagBitor:      func() Node { return &Bitor{} },
	TagBitxor:     func() Node { return &Bitxor{} },
	TagUnaryAdd:   func() Node { return &UnaryAdd{} },
	TagUnarySub:   func() Node { return &UnarySub{} },
	TagInvert:     func() Node { return &Invert{} },
}

// New returns a zero-valued node of the given variant.
func New(tag Tag) (Node, bool) {
	ctor, ok := prototypes[tag]
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// Tags lists every variant.
func Tags() []Tag {
	return allTags
}

var allTags = []Tag{
	TagModule,
	TagStmt,
	TagAssign,
	TagAugAssign,
	TagAssName,
	TagAssAttr,
	TagAssTuple,
	TagAssList,
	TagDelete,
	TagDiscard,
	TagPass,
	TagBreak,
	TagContinue,
	TagReturn,
	TagYield,
	TagIf,
	TagBranch,
	TagIfExp,
	TagWhile,
	TagFor,
	TagWith,
	TagFunction,
	TagLambda,
	TagClass,
	TagTryExcept,
	TagHandler,
	TagTryFinally,
	TagRaise,
	TagAssert,
	TagGlobal,
	TagImport,
	TagFrom,
	TagAlias,
	TagName,
	TagConst,
	TagGetattr,
	TagCallFunc,
	TagKeyword,
	TagSubscript,
	TagSlice,
	TagTuple,
	TagList,
	TagDict,
	TagDictItem,
	TagAnd,
	TagOr,
	TagNot,
	TagCompare,
	TagCompareOp,
	TagAdd,
	TagSub,
	TagMul,
	TagDiv,
	TagFloorDiv,
	TagMod,
	TagPower,
	TagLeftShift,
	TagRightShift,
	TagBitand,
	TagBitor,
	TagBitxor,
	TagUnaryAdd,
	TagUnarySub,
	TagInvert,
}

func (*Module) Tag() Tag { return TagModule }
func (*Stmt) Tag() Tag { return TagStmt }
func (*Assign) Tag() Tag { return TagAssign }
func (*AugAssign) Tag() Tag { return TagAugAssign }
func (*AssName) Tag() Tag { return TagAssName }
func (*AssAttr) Tag() Tag { return TagAssAttr }
func (*AssTuple) Tag() Tag { return TagAssTuple }
func (*AssList) Tag() Tag { return TagAssList }
func (*Delete) Tag() Tag { return TagDelete }
func (*Discard) Tag() Tag { return TagDiscard }
func (*Pass) Tag() Tag { return TagPass }
func (*Break) Tag() Tag { return TagBreak }
func (*Continue) Tag() Tag { return TagContinue }
func (*Return) Tag() Tag { return TagReturn }
func (*Yield) Tag() Tag { return TagYield }
func (*If) Tag() Tag { return TagIf }
func (*Branch) Tag() Tag { return TagBranch }
func (*IfExp) Tag() Tag { return TagIfExp }
func (*While) Tag() Tag { return TagWhile }
func (*For) Tag() Tag { return TagFor }
func (*With) Tag() Tag { return TagWith }
func (*Function) Tag() Tag { return TagFunction }
func (*Lambda) Tag() Tag { return TagLambda }
func (*Class) Tag() Tag { return TagClass }
func (*TryExcept) Tag() Tag { return TagTryExcept }
func (*Handler) Tag() Tag { return TagHandler }
func (*TryFinally) Tag() Tag { return TagTryFinally }
func (*Raise) Tag() Tag { return TagRaise }
func (*Assert) Tag() Tag { return TagAssert }
func (*Global) Tag() Tag { return TagGlobal }
func (*Import) Tag() Tag { return TagImport }
func (*From) Tag() Tag { return TagFrom }
func (*Alias) Tag() Tag { return TagAlias }
func (*Name) Tag() Tag { return TagName }
func (*Const) Tag() Tag { return TagConst }
func (*Getattr) Tag() Tag { return TagGetattr }
func (*CallFunc) Tag() Tag { return TagCallFunc }
func (*Keyword) Tag() Tag { return TagKeyword }
func (*Subscript) Tag() Tag { return TagSubscript }
func (*Slice) Tag() Tag { return TagSlice }
func (*Tuple) Tag() Tag { return TagTuple }
func (*List) Tag() Tag { return TagList }
func (*Dict) Tag() Tag { return TagDict }
func (*DictItem) Tag() Tag { return TagDictItem }
func (*And) Tag() Tag { return TagAnd }
func (*Or) Tag() Tag { return TagOr }
func (*Not) Tag() Tag { return TagNot }
func (*Compare) Tag() Tag { return TagCompare }
func (*CompareOp) Tag() Tag { return TagCompareOp }
func (*Add) Tag() Tag { return TagAdd }
func (*Sub) Tag() Tag { return TagSub }
func (*Mul) Tag() Tag { return TagMul }
func (*Div) Tag() Tag { return TagDiv }
func (*FloorDiv) Tag() Tag { return TagFloorDiv }
func (*Mod) Tag() Tag { return TagMod }
func (*Power) Tag() Tag { return TagPower }
func (*LeftShift) Tag() Tag { return TagLeftShift }
func (*RightShift) Tag() Tag { return TagRightShift }
func (*Bitand) Tag() Tag { return TagBitand }
func (*Bitor) Tag() Tag { return TagBitor }
func (*Bitxor) Tag() Tag { return TagBitxor }
func (*UnaryAdd) Tag() Tag { return TagUnaryAdd }
func (*UnarySub) Tag() Tag { return TagUnarySub }
func (*Invert) Tag() Tag { return TagInvert }

func (*Module) node() {}
func (*Stmt) node() {}
func (*Assign) node() {}
func (*AugAssign) node() {}
func (*AssName) node() {}
func (*AssAttr) node() {}
func (*AssTuple) node() {}
func (*AssList) node() {}
func (*Delete) node() {}
func (*Discard) node() {}
func (*Pass) node() {}
func (*Break) node() {}
func (*Continue) node() {}
func (*Return) node() {}
func (*Yield) node() {}
func (*If) node() {}
func (*Branch) node() {}
func (*IfExp) node() {}
func (*While) node() {}
func (*For) node() {}
func (*With) node() {}
func (*Function) node() {}
func (*Lambda) node() {}
func (*Class) node() {}
func (*TryExcept) node() {}
func (*Handler) node() {}
func (*TryFinally) node() {}
func (*Raise) node() {}
func (*Assert) node() {}
func (*Global) node() {}
func (*Import) node() {}
func (*From) node() {}
func (*Alias) node() {}
func (*Name) node() {}
func (*Const) node() {}
func (*Getattr) node() {}
func (*CallFunc) node() {}
func (*Keyword) node() {}
func (*Subscript) node() {}
func (*Slice) node() {}
func (*Tuple) node() {}
func (*List) node() {}
func (*Dict) node() {}
func (*DictItem) node() {}
func (*And) node() {}
func (*Or) node() {}
func (*Not) node() {}
func (*Compare) node() {}
func (*CompareOp) node() {}
func (*Add) node() {}
func (*Sub) node() {}
func (*Mul) node() {}
func (*Div) node() {}
func (*FloorDiv) node() {}
func (*Mod) node() {}
func (*Power) node() {}
func (*LeftShift) node() {}
func (*RightShift) node() {}
func (*Bitand) node() {}
func (*Bitor) node() {}
func (*Bitxor) node() {}
func (*UnaryAdd) node() {}
func (*UnarySub) node() {}
func (*Invert) node() {}

var statementTags = map[Tag]bool{
	TagStmt: true, TagAssign: true, TagAugAssign: true, TagDelete: true,
	TagDiscard: true, TagPass: true, TagBreak: true, TagContinue: true,
	TagReturn: true, TagYield: true, TagIf: true, TagWhile: true, TagFor: true,
	TagWith: true, TagFunction: true, TagClass: true, TagTryExcept: true,
	TagTryFinally: true, TagRaise: true, TagAssert: true, TagGlobal: true,
	TagImport: true, TagFrom: true,
}

// IsStatement reports whether variants with the given tag stand on their
// own lines inside a Stmt.
func IsStatement(tag Tag) bool {
	return statementTags[tag]
}
