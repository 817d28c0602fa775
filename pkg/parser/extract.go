package parser

import (
	"strings"

	"github.com/panbanda/dryscan/pkg/models"
	sitter "github.com/smacker/go-tree-sitter"
)

// Type declaration nodes compared by signature. Both grammars use the same
// names for classes and records.
var typeNodeKinds = map[string]string{
	"class_declaration":         "class",
	"struct_declaration":        "struct",
	"record_declaration":        "record",
	"record_struct_declaration": "record struct",
}

var literalKinds = map[string]models.TokenKind{
	// C#
	"integer_literal":         models.KindNumericLiteral,
	"real_literal":            models.KindNumericLiteral,
	"verbatim_string_literal": models.KindStringLiteral,
	"raw_string_literal":      models.KindStringLiteral,
	// Java
	"decimal_integer_literal":        models.KindNumericLiteral,
	"hex_integer_literal":            models.KindNumericLiteral,
	"octal_integer_literal":          models.KindNumericLiteral,
	"binary_integer_literal":         models.KindNumericLiteral,
	"decimal_floating_point_literal": models.KindNumericLiteral,
	"hex_floating_point_literal":     models.KindNumericLiteral,
	"text_block":                     models.KindStringLiteral,
	// both
	"string_literal":    models.KindStringLiteral,
	"character_literal": models.KindCharacterLiteral,
}

var commentNodes = map[string]bool{
	"comment":       true,
	"line_comment":  true,
	"block_comment": true,
}

var loopKeywords = map[string]models.TokenKind{
	"for":   models.KindForKeyword,
	"while": models.KindWhileKeyword,
	"do":    models.KindDoKeyword,
}

// ExtractUnit maps a parse tree to the view used by the similarity passes.
// Trees with syntax errors are extracted on a best-effort basis and flagged.
func ExtractUnit(r *ParseResult) models.SourceUnit {
	unit := models.SourceUnit{
		Path:     r.Path,
		Language: string(r.Language),
		Types:    make([]models.TypeDecl, 0),
		Methods:  make([]models.Method, 0),
	}
	if r.Tree == nil {
		return unit
	}

	root := r.Tree.RootNode()
	unit.HasErrors = root.HasError()
	unit.Tokens = Tokenize(root, r.Source)

	e := extractor{path: r.Path, source: r.Source, unit: &unit}
	e.visit(root, models.UnknownType)
	return unit
}

type extractor struct {
	path   string
	source []byte
	unit   *models.SourceUnit
}

// visit walks named nodes in pre-order, so an outer type is recorded before
// the types nested in it.
func (e *extractor) visit(node *sitter.Node, owner string) {
	switch typ := node.Type(); {
	case typeNodeKinds[typ] != "":
		decl := e.typeDecl(node, typeNodeKinds[typ])
		e.unit.Types = append(e.unit.Types, decl)
		owner = decl.Name
	case typ == "method_declaration":
		name, body, tokens := e.methodParts(node)
		e.unit.Methods = append(e.unit.Methods, models.Method{
			Name:       name,
			Owner:      owner,
			Body:       body,
			BodyTokens: tokens,
			File:       e.path,
			Line:       line(node),
		})
	}

	for i := range int(node.NamedChildCount()) {
		e.visit(node.NamedChild(i), owner)
	}
}

func (e *extractor) typeDecl(node *sitter.Node, kind string) models.TypeDecl {
	decl := models.TypeDecl{
		Name:      GetNodeText(node.ChildByFieldName("name"), e.source),
		Kind:      kind,
		File:      e.path,
		StartLine: line(node),
		EndLine:   node.EndPoint().Row + 1,
		Members:   make([]models.Member, 0),
	}

	body := typeBody(node)
	if body == nil {
		return decl
	}
	for i := range int(body.NamedChildCount()) {
		child := body.NamedChild(i)
		switch child.Type() {
		case "method_declaration":
			name, text, tokens := e.methodParts(child)
			decl.Members = append(decl.Members, models.Member{
				Kind:       models.MemberMethod,
				Name:       name,
				Body:       text,
				BodyTokens: tokens,
				Line:       line(child),
			})
		case "field_declaration":
			decl.Members = append(decl.Members, models.Member{
				Kind:      models.MemberField,
				Variables: e.declaratorNames(child),
				Line:      line(child),
			})
		case "property_declaration":
			decl.Members = append(decl.Members, models.Member{
				Kind: models.MemberProperty,
				Name: GetNodeText(child.ChildByFieldName("name"), e.source),
				Line: line(child),
			})
		}
	}
	return decl
}

// methodParts returns the identifier, block body text and body tokens of a
// method. Expression-bodied and abstract methods have an empty body.
func (e *extractor) methodParts(node *sitter.Node) (string, string, []models.Token) {
	name := GetNodeText(node.ChildByFieldName("name"), e.source)
	body := node.ChildByFieldName("body")
	if body == nil || body.Type() != "block" {
		return name, "", nil
	}
	return name, GetNodeText(body, e.source), Tokenize(body, e.source)
}

// declaratorNames collects variable identifiers of a field declaration. C#
// nests declarators in a variable_declaration; Java lists them directly.
func (e *extractor) declaratorNames(field *sitter.Node) []string {
	var names []string
	collect := func(parent *sitter.Node) {
		for i := range int(parent.NamedChildCount()) {
			child := parent.NamedChild(i)
			if child.Type() != "variable_declarator" {
				continue
			}
			name := child.ChildByFieldName("name")
			if name == nil {
				name = firstNamedChildOfType(child, "identifier")
			}
			names = append(names, GetNodeText(name, e.source))
		}
	}

	collect(field)
	for i := range int(field.NamedChildCount()) {
		if child := field.NamedChild(i); child.Type() == "variable_declaration" {
			collect(child)
		}
	}
	return names
}

func typeBody(node *sitter.Node) *sitter.Node {
	if body := node.ChildByFieldName("body"); body != nil {
		return body
	}
	for i := range int(node.NamedChildCount()) {
		switch child := node.NamedChild(i); child.Type() {
		case "declaration_list", "class_body":
			return child
		}
	}
	return nil
}

func firstNamedChildOfType(node *sitter.Node, typ string) *sitter.Node {
	for i := range int(node.NamedChildCount()) {
		if child := node.NamedChild(i); child.Type() == typ {
			return child
		}
	}
	return nil
}

func line(node *sitter.Node) uint32 {
	return node.StartPoint().Row + 1
}

// Tokenize returns the lexical tokens under node in source order. Literals
// and comments are single tokens; every other non-empty leaf is one token.
func Tokenize(node *sitter.Node, source []byte) []models.Token {
	var tokens []models.Token
	Walk(node, source, func(n *sitter.Node, src []byte) bool {
		typ := n.Type()
		if kind, ok := literalKinds[typ]; ok {
			tokens = append(tokens, models.Token{Kind: kind, Text: GetNodeText(n, src)})
			return false
		}
		if commentNodes[typ] {
			text := GetNodeText(n, src)
			tokens = append(tokens, models.Token{Kind: commentKind(text), Text: text})
			return false
		}
		if n.ChildCount() > 0 {
			return true
		}

		text := GetNodeText(n, src)
		if text == "" {
			return false
		}
		kind := models.KindOther
		if k, ok := loopKeywords[typ]; ok && !n.IsNamed() {
			kind = k
		}
		tokens = append(tokens, models.Token{Kind: kind, Text: text})
		return false
	})
	return tokens
}

// commentKind classifies comment text the way both languages mark
// documentation: "///" lines and "/** */" blocks.
func commentKind(text string) models.TokenKind {
	switch {
	case strings.HasPrefix(text, "///") && !strings.HasPrefix(text, "////"):
		return models.KindSingleLineDocComment
	case strings.HasPrefix(text, "/**") && text != "/**/":
		return models.KindMultiLineDocComment
	case strings.HasPrefix(text, "/*"):
		return models.KindMultiLineComment
	default:
		return models.KindSingleLineComment
	}
}
