package highlight

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
)

// Language identifies one of the grammars the highlighter and the
// indent calculator know how to load.
type Language int

const (
	LangUnknown Language = iota
	LangGo
	LangPython
	LangJavaScript
	LangC
	LangCpp
	LangBash
)

// DetectLanguage maps a file extension to a Language, or LangUnknown for
// anything not wired to a grammar.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return LangGo
	case ".py":
		return LangPython
	case ".js", ".mjs", ".jsx":
		return LangJavaScript
	case ".c", ".h":
		return LangC
	case ".cc", ".cpp", ".cxx", ".hpp":
		return LangCpp
	case ".sh", ".bash":
		return LangBash
	default:
		return LangUnknown
	}
}

// Grammar returns the sitter.Language for l, or nil for LangUnknown.
func (l Language) Grammar() *sitter.Language {
	switch l {
	case LangGo:
		return golang.GetLanguage()
	case LangPython:
		return python.GetLanguage()
	case LangJavaScript:
		return javascript.GetLanguage()
	case LangC:
		return c.GetLanguage()
	case LangCpp:
		return cpp.GetLanguage()
	case LangBash:
		return bash.GetLanguage()
	default:
		return nil
	}
}

// HighlightsQuery returns the @capture query used to produce colour spans
// for l. Captures are intentionally coarse — enough categories for a
// terminal colour table, not a full editor-grade grammar-specific query.
func (l Language) HighlightsQuery() string {
	switch l {
	case LangGo:
		return goHighlightsQuery
	case LangPython:
		return pythonHighlightsQuery
	case LangJavaScript:
		return jsHighlightsQuery
	case LangC, LangCpp:
		return cHighlightsQuery
	case LangBash:
		return bashHighlightsQuery
	default:
		return ""
	}
}

// IndentsQuery returns the @indent/@dedent query used by internal/indent.
func (l Language) IndentsQuery() string {
	switch l {
	case LangGo, LangC, LangCpp, LangJavaScript:
		return cLikeIndentsQuery
	case LangPython:
		return pythonIndentsQuery
	case LangBash:
		return cLikeIndentsQuery
	default:
		return ""
	}
}

const goHighlightsQuery = `
(comment) @comment
(interpreted_string_literal) @string
(raw_string_literal) @string
(int_literal) @number
(float_literal) @number
(func_declaration name: (identifier) @function)
(method_declaration name: (field_identifier) @function)
(call_expression function: (identifier) @function)
(type_identifier) @type
["func" "return" "if" "else" "for" "range" "var" "const" "package" "import" "struct" "interface" "go" "defer" "switch" "case" "default" "break" "continue" "type" "map" "chan" "select"] @keyword
`

const pythonHighlightsQuery = `
(comment) @comment
(string) @string
(integer) @number
(float) @number
(function_definition name: (identifier) @function)
(call function: (identifier) @function)
(class_definition name: (identifier) @type)
["def" "return" "if" "elif" "else" "for" "while" "import" "from" "class" "try" "except" "finally" "with" "as" "lambda" "pass" "break" "continue"] @keyword
`

const jsHighlightsQuery = `
(comment) @comment
(string) @string
(number) @number
(function_declaration name: (identifier) @function)
(call_expression function: (identifier) @function)
(class_declaration name: (identifier) @type)
["function" "return" "if" "else" "for" "while" "var" "let" "const" "class" "import" "export" "from" "new" "try" "catch" "finally" "switch" "case" "default" "break" "continue"] @keyword
`

const cHighlightsQuery = `
(comment) @comment
(string_literal) @string
(number_literal) @number
(function_declarator declarator: (identifier) @function)
(call_expression function: (identifier) @function)
(primitive_type) @type
(type_identifier) @type
["return" "if" "else" "for" "while" "switch" "case" "default" "break" "continue" "struct" "enum" "union" "typedef" "static" "const" "sizeof" "goto"] @keyword
`

const bashHighlightsQuery = `
(comment) @comment
(string) @string
(number) @number
(command_name) @function
["if" "then" "else" "elif" "fi" "for" "while" "do" "done" "case" "esac" "function" "in" "return"] @keyword
`

const cLikeIndentsQuery = `
["{" "(" "["] @indent
["}" ")" "]"] @dedent
`

const pythonIndentsQuery = `
(block) @indent
`
