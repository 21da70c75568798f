package script

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// scriptLexer tokenizes just enough of SurrealQL and SQL to find statement boundaries.
var scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `(?:--|#|//)[^\r\n]*`},
	{Name: "MultilineComment", Pattern: `/\*[^*]*\*+([^/*][^*]*\*+)*/`},
	{Name: "String", Pattern: `'(?:[^'\\]|\\.|'')*'|"(?:[^"\\]|\\.|"")*"`},
	{Name: "BacktickIdent", Pattern: "`(?:[^`\\\\]|\\\\.)*`"},
	{Name: "AngleIdent", Pattern: `⟨[^⟩]*⟩`},
	{Name: "Open", Pattern: `[{(\[]`},
	{Name: "Close", Pattern: `[})\]]`},
	{Name: "Semicolon", Pattern: `;`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Other", Pattern: "[^;'\"`\\s/#{}()\\[\\]⟨-]+|[/#⟨-]"},
})

type (
	// Statement is a single top-level statement of a script.
	Statement struct {
		// Text is the statement without its terminating semicolon or surrounding whitespace.
		Text string

		// Line is the 1-based line on which the statement starts.
		Line int
	}
)

// Split tokenizes src and returns its top-level statements in order.
//
// Returns an error when src contains a token that cannot be lexed, such as an
// unterminated string literal.
func Split(src string) ([]Statement, error) {
	lex, err := scriptLexer.LexString("", src)
	if err != nil {
		return nil, errors.Wrap(err, "failed to tokenize script")
	}

	symbols := scriptLexer.Symbols()
	var (
		ignored = map[lexer.TokenType]bool{
			symbols["Comment"]:          true,
			symbols["MultilineComment"]: true,
			symbols["Whitespace"]:       true,
		}
		open      = symbols["Open"]
		closer    = symbols["Close"]
		semicolon = symbols["Semicolon"]
	)

	var (
		stmts    []Statement
		buf      strings.Builder
		trailing strings.Builder
		depth    int
		line     int
	)

	flush := func() {
		if text := strings.TrimSpace(buf.String()); text != "" {
			stmts = append(stmts, Statement{Text: text, Line: line})
		}
		buf.Reset()
		trailing.Reset()
		line = 0
	}

	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, errors.Wrap(err, "failed to tokenize script")
		}

		if tok.EOF() {
			break
		}

		// Comments and whitespace before a statement starts belong to nobody.
		// Inside a statement they are held back until another token follows,
		// so a statement never ends in a comment.
		if ignored[tok.Type] {
			if line != 0 {
				trailing.WriteString(tok.Value)
			}
			continue
		}

		switch tok.Type {
		case open:
			depth++
		case closer:
			if depth > 0 {
				depth--
			}
		case semicolon:
			if depth == 0 {
				flush()
				continue
			}
		}

		if line == 0 {
			line = tok.Pos.Line
		}
		buf.WriteString(trailing.String())
		trailing.Reset()
		buf.WriteString(tok.Value)
	}

	flush()
	return stmts, nil
}

// Texts returns the text of every statement.
func Texts(stmts []Statement) []string {
	if len(stmts) == 0 {
		return nil
	}

	texts := make([]string, len(stmts))
	for i, stmt := range stmts {
		texts[i] = stmt.Text
	}

	return texts
}

// Join renders statements back into a script, terminating each with a semicolon.
func Join(stmts ...string) string {
	var sb strings.Builder
	for _, stmt := range stmts {
		sb.WriteString(stmt)
		sb.WriteString(";\n")
	}

	return sb.String()
}
