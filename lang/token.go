package lang

//go:generate go tool stringer --linecomment --type TokenKind --output token_string.go

// TokenKind identifies the lexical class of a [Token].
type TokenKind int

const (
	TokenEOF TokenKind = iota // EOF

	TokenText    // Text
	TokenComment // Comment

	TokenOpenExpression  // {{
	TokenCloseExpression // }}
	TokenOpenStatement   // {%
	TokenCloseStatement  // %}

	TokenString     // String
	TokenInteger    // Integer
	TokenFloat      // Float
	TokenIdentifier // Identifier

	TokenTrue  // true
	TokenFalse // false
	TokenNone  // none

	TokenIf        // if
	TokenElif      // elif
	TokenElse      // else
	TokenEndIf     // endif
	TokenFor       // for
	TokenEndFor    // endfor
	TokenIn        // in
	TokenNot       // not
	TokenAnd       // and
	TokenOr        // or
	TokenIs        // is
	TokenSet       // set
	TokenEndSet    // endset
	TokenMacro     // macro
	TokenEndMacro  // endmacro
	TokenBreak     // break
	TokenContinue  // continue
	TokenCall      // call
	TokenEndCall   // endcall
	TokenFilter    // filter
	TokenEndFilter // endfilter

	TokenPlus         // +
	TokenMinus        // -
	TokenStar         // *
	TokenSlash        // /
	TokenFloorDiv     // //
	TokenPercent      // %
	TokenPow          // **
	TokenTilde        // ~
	TokenPipe         // |
	TokenDot          // .
	TokenComma        // ,
	TokenColon        // :
	TokenAssign       // =
	TokenEqual        // ==
	TokenNotEqual     // !=
	TokenLess         // <
	TokenLessEqual    // <=
	TokenGreater      // >
	TokenGreaterEqual // >=
	TokenOpenParen    // (
	TokenCloseParen   // )
	TokenOpenBracket  // [
	TokenCloseBracket // ]
	TokenOpenBrace    // {
	TokenCloseBrace   // }
)

// Token is a single lexical unit produced by [Tokenize].
type Token struct {
	Text   string
	Kind   TokenKind
	Offset int
}

// keywords maps reserved words to their token kinds.
var keywords = map[string]TokenKind{
	"true":      TokenTrue,
	"True":      TokenTrue,
	"false":     TokenFalse,
	"False":     TokenFalse,
	"none":      TokenNone,
	"None":      TokenNone,
	"if":        TokenIf,
	"elif":      TokenElif,
	"else":      TokenElse,
	"endif":     TokenEndIf,
	"for":       TokenFor,
	"endfor":    TokenEndFor,
	"in":        TokenIn,
	"not":       TokenNot,
	"and":       TokenAnd,
	"or":        TokenOr,
	"is":        TokenIs,
	"set":       TokenSet,
	"endset":    TokenEndSet,
	"macro":     TokenMacro,
	"endmacro":  TokenEndMacro,
	"break":     TokenBreak,
	"continue":  TokenContinue,
	"call":      TokenCall,
	"endcall":   TokenEndCall,
	"filter":    TokenFilter,
	"endfilter": TokenEndFilter,
}

// operators lists punctuation in longest-match order.
var operators = []struct {
	text string
	kind TokenKind
}{
	{"==", TokenEqual},
	{"!=", TokenNotEqual},
	{"<=", TokenLessEqual},
	{">=", TokenGreaterEqual},
	{"//", TokenFloorDiv},
	{"**", TokenPow},
	{"+", TokenPlus},
	{"-", TokenMinus},
	{"*", TokenStar},
	{"/", TokenSlash},
	{"%", TokenPercent},
	{"~", TokenTilde},
	{"|", TokenPipe},
	{".", TokenDot},
	{",", TokenComma},
	{":", TokenColon},
	{"=", TokenAssign},
	{"<", TokenLess},
	{">", TokenGreater},
	{"(", TokenOpenParen},
	{")", TokenCloseParen},
	{"[", TokenOpenBracket},
	{"]", TokenCloseBracket},
	{"{", TokenOpenBrace},
	{"}", TokenCloseBrace},
}

// IsKeyword reports whether k is a reserved word (including literal
// keywords).
func (k TokenKind) IsKeyword() bool {
	return k >= TokenTrue && k <= TokenEndFilter
}
