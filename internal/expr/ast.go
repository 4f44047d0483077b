package expr

// Node is an expression tree node.
type Node interface {
	Pos() int
}

// LiteralKind distinguishes literal node payloads.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitBool
)

// LiteralNode is an integer, decimal, string or boolean literal.
type LiteralNode struct {
	Kind     LiteralKind
	IntVal   int64
	FloatVal float64
	StrVal   string
	BoolVal  bool
	At       int
}

// IdentNode references a member of the current context, an ambient argument,
// or the reserved args namespace.
type IdentNode struct {
	Name string
	At   int
}

// MemberNode accesses a member of a receiver expression.
type MemberNode struct {
	Recv Node
	Name string
	At   int
}

// UnaryNode is `not x`, `!x` or `-x`.
type UnaryNode struct {
	Op string
	X  Node
	At int
}

// BinaryNode is a binary operator application.
type BinaryNode struct {
	Op   string
	L, R Node
	At   int
}

// ConditionalNode is `cond ? a : b` or `if cond then a else b`.
type ConditionalNode struct {
	Cond, Then, Else Node
	At               int
}

// CallNode is a method call. A nil Recv calls a method on the current
// context.
type CallNode struct {
	Recv Node
	Name string
	Args []Node
	At   int
}

func (n *LiteralNode) Pos() int     { return n.At }
func (n *IdentNode) Pos() int       { return n.At }
func (n *MemberNode) Pos() int      { return n.At }
func (n *UnaryNode) Pos() int       { return n.At }
func (n *BinaryNode) Pos() int      { return n.At }
func (n *ConditionalNode) Pos() int { return n.At }
func (n *CallNode) Pos() int        { return n.At }
