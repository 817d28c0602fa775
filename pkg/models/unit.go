package models

// UnknownType is the owner name given to methods declared outside any type.
const UnknownType = "UnknownType"

// TokenKind classifies a lexical token. The set is closed: every token the
// parser emits maps to exactly one kind, with KindOther as the fallback.
type TokenKind int

const (
	KindOther TokenKind = iota
	KindNumericLiteral
	KindStringLiteral
	KindCharacterLiteral
	KindSingleLineComment
	KindMultiLineComment
	KindSingleLineDocComment
	KindMultiLineDocComment
	KindForKeyword
	KindWhileKeyword
	KindDoKeyword
)

var tokenKindNames = [...]string{
	KindOther:                "other",
	KindNumericLiteral:       "numeric_literal",
	KindStringLiteral:        "string_literal",
	KindCharacterLiteral:     "character_literal",
	KindSingleLineComment:    "single_line_comment",
	KindMultiLineComment:     "multi_line_comment",
	KindSingleLineDocComment: "single_line_doc_comment",
	KindMultiLineDocComment:  "multi_line_doc_comment",
	KindForKeyword:           "for_keyword",
	KindWhileKeyword:         "while_keyword",
	KindDoKeyword:            "do_keyword",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return tokenKindNames[KindOther]
	}
	return tokenKindNames[k]
}

// IsComment reports whether the kind is one of the four comment kinds.
func (k TokenKind) IsComment() bool {
	switch k {
	case KindSingleLineComment, KindMultiLineComment, KindSingleLineDocComment, KindMultiLineDocComment:
		return true
	}
	return false
}

// IsLoopKeyword reports whether the kind introduces a for, while or do loop.
func (k TokenKind) IsLoopKeyword() bool {
	return k == KindForKeyword || k == KindWhileKeyword || k == KindDoKeyword
}

// Token is a single lexical unit with its classification and literal text.
type Token struct {
	Kind TokenKind `json:"kind"`
	Text string    `json:"text"`
}

// MemberKind identifies the shape of a type member.
type MemberKind string

const (
	MemberMethod   MemberKind = "method"
	MemberField    MemberKind = "field"
	MemberProperty MemberKind = "property"
)

func (m MemberKind) String() string { return string(m) }

// Member is one child of a type declaration.
//
// Methods and properties carry Name. Fields carry one entry in Variables per
// declared variable, in declaration order. A member whose identifier could not
// be recovered from the syntax tree has an empty Name (or no Variables).
type Member struct {
	Kind       MemberKind `json:"kind"`
	Name       string     `json:"name,omitempty"`
	Variables  []string   `json:"variables,omitempty"`
	Body       string     `json:"-"`
	BodyTokens []Token    `json:"-"`
	Line       uint32     `json:"line"`
}

// TypeDecl is a named type found within a source unit.
type TypeDecl struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	File      string   `json:"file"`
	StartLine uint32   `json:"start_line"`
	EndLine   uint32   `json:"end_line"`
	Members   []Member `json:"members"`
}

// Method is a method declaration as seen by the duplication detector. Owner
// is the nearest enclosing type name, or UnknownType.
type Method struct {
	Name       string  `json:"name"`
	Owner      string  `json:"owner"`
	Body       string  `json:"-"`
	BodyTokens []Token `json:"-"`
	File       string  `json:"file"`
	Line       uint32  `json:"line"`
}

// QualifiedName returns Owner + "." + Name.
func (m Method) QualifiedName() string {
	return m.Owner + "." + m.Name
}

// SourceUnit is the extracted view of one parsed file.
type SourceUnit struct {
	Path      string     `json:"path"`
	Language  string     `json:"language"`
	Types     []TypeDecl `json:"types"`
	Methods   []Method   `json:"methods"`
	Tokens    []Token    `json:"-"`
	HasErrors bool       `json:"has_errors,omitempty"`
}
