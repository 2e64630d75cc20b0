package lang

// Node is any element of a parsed template. The set of node types is closed:
// every implementation lives in this file.
type Node interface {
	// Pos returns the byte offset of the node in normalized source.
	Pos() int
	node()
}

// Stmt is a node that may appear in a template body.
type Stmt interface {
	Node
	stmt()
}

// Expr is a node that evaluates to a [Value].
type Expr interface {
	Node
	expr()
}

type base struct {
	Offset int
}

func (b base) Pos() int { return b.Offset }
func (base) node()      {}

type (
	// Program is the root of a parsed template.
	Program struct {
		Body []Stmt
		base
	}

	// Text is literal template text copied verbatim to output.
	Text struct {
		Value string
		base
	}

	// Comment is a {# ... #} block. It produces no output.
	Comment struct {
		Value string
		base
	}

	// Output is a {{ expression }} tag.
	Output struct {
		Expr Expr
		base
	}

	// If is an if/elif/else chain. Each elif is a nested If in Else.
	If struct {
		Test Expr
		Body []Stmt
		Else []Stmt
		base
	}

	// For iterates Iterable, binding each element to Target.
	// Filter, when set, is the inline "if" condition.
	For struct {
		Target   Expr
		Iterable Expr
		Filter   Expr
		Body     []Stmt
		Else     []Stmt
		base
	}

	// Set assigns Value to Target, or the rendered Body when Value is nil.
	Set struct {
		Target Expr
		Value  Expr
		Body   []Stmt
		base
	}

	// Macro defines a named, callable template fragment.
	Macro struct {
		Name   string
		Params []Parameter
		Body   []Stmt
		base
	}

	// Break exits the innermost loop.
	Break struct{ base }

	// Continue skips to the next iteration of the innermost loop.
	Continue struct{ base }

	// CallBlock invokes Call with a synthesized "caller" that renders Body.
	CallBlock struct {
		Call         *Call
		CallerParams []Parameter
		Body         []Stmt
		base
	}

	// FilterBlock renders Body and passes the result through Filter.
	// Filter.Operand is nil.
	FilterBlock struct {
		Filter *FilterExpr
		Body   []Stmt
		base
	}
)

// Parameter is a macro or caller parameter. Default is nil when required.
type Parameter struct {
	Default Expr
	Name    string
}

type (
	// StringLiteral is a quoted string.
	StringLiteral struct {
		Value string
		base
	}

	// IntegerLiteral is an integer constant.
	IntegerLiteral struct {
		Value int64
		base
	}

	// FloatLiteral is a floating point constant.
	FloatLiteral struct {
		Value float64
		base
	}

	// BooleanLiteral is true or false.
	BooleanLiteral struct {
		Value bool
		base
	}

	// NullLiteral is none.
	NullLiteral struct{ base }

	// ArrayLiteral is [a, b, ...].
	ArrayLiteral struct {
		Items []Expr
		base
	}

	// TupleLiteral is (a, b, ...) or a bare comma list in set/for targets.
	TupleLiteral struct {
		Items []Expr
		base
	}

	// ObjectLiteral is {k: v, ...}. Entry order is preserved.
	ObjectLiteral struct {
		Entries []ObjectEntry
		base
	}

	// Identifier is a variable reference.
	Identifier struct {
		Name string
		base
	}

	// Unary applies a prefix operator: not, - or +.
	Unary struct {
		Operand Expr
		Op      TokenKind
		base
	}

	// Spread is *expr inside a call's positional arguments.
	Spread struct {
		Operand Expr
		base
	}

	// Binary applies an infix operator.
	Binary struct {
		Left  Expr
		Right Expr
		Op    TokenKind
		base
	}

	// Ternary is "Then if Test else Else". Else may be nil.
	Ternary struct {
		Then Expr
		Test Expr
		Else Expr
		base
	}

	// Call invokes Callee with Args.
	Call struct {
		Callee Expr
		Args   Arguments
		base
	}

	// Member is obj.name (Computed false, Property an *Identifier) or
	// obj[expr] (Computed true).
	Member struct {
		Object   Expr
		Property Expr
		Computed bool
		base
	}

	// Slice is obj[start:stop:step]; any bound may be nil.
	Slice struct {
		Object Expr
		Start  Expr
		Stop   Expr
		Step   Expr
		base
	}

	// FilterExpr is "Operand | Name(Args)".
	FilterExpr struct {
		Operand Expr
		Name    string
		Args    Arguments
		base
	}

	// TestExpr is "Operand is [not] Name(Args)".
	TestExpr struct {
		Operand Expr
		Name    string
		Args    Arguments
		Negated bool
		base
	}
)

// ObjectEntry is a key/value pair of an [ObjectLiteral].
type ObjectEntry struct {
	Key   Expr
	Value Expr
}

// Keyword is a name=value call argument.
type Keyword struct {
	Value Expr
	Name  string
}

// Arguments holds the arguments of a call, filter or test. Positional may
// contain at most one [Spread]; Kwargs is the optional **expr operand.
type Arguments struct {
	Kwargs     Expr
	Positional []Expr
	Keywords   []Keyword
}

// Len returns the number of syntactic arguments.
func (a Arguments) Len() int {
	n := len(a.Positional) + len(a.Keywords)
	if a.Kwargs != nil {
		n++
	}

	return n
}

func (*Program) stmt()     {}
func (*Text) stmt()        {}
func (*Comment) stmt()     {}
func (*Output) stmt()      {}
func (*If) stmt()          {}
func (*For) stmt()         {}
func (*Set) stmt()         {}
func (*Macro) stmt()       {}
func (*Break) stmt()       {}
func (*Continue) stmt()    {}
func (*CallBlock) stmt()   {}
func (*FilterBlock) stmt() {}

func (*StringLiteral) expr()  {}
func (*IntegerLiteral) expr() {}
func (*FloatLiteral) expr()   {}
func (*BooleanLiteral) expr() {}
func (*NullLiteral) expr()    {}
func (*ArrayLiteral) expr()   {}
func (*TupleLiteral) expr()   {}
func (*ObjectLiteral) expr()  {}
func (*Identifier) expr()     {}
func (*Unary) expr()          {}
func (*Spread) expr()         {}
func (*Binary) expr()         {}
func (*Ternary) expr()        {}
func (*Call) expr()           {}
func (*Member) expr()         {}
func (*Slice) expr()          {}
func (*FilterExpr) expr()     {}
func (*TestExpr) expr()       {}
