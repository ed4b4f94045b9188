// Package query parses page filter expressions such as
//
//	tag:一教 AND tag:立技 title:"kokyu ho" date:2024-05-01
//
// Predicates are joined by AND, written or implied. The page listing only
// supports conjunctive filters, so OR and NOT are rejected.
package query

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/trainlog"
)

const dateLayout = "2006-01-02"

// Filter is a parsed expression.
type Filter struct {
	Tags  []string `json:"tags,omitempty"`
	Title string   `json:"title,omitempty"`
	Date  string   `json:"date,omitempty"`
}

var validKeys = map[string]bool{
	"tag":   true,
	"title": true,
	"date":  true,
}

type parser struct {
	tokens []token
	pos    int
}

type tokenType int

const (
	tokenWord tokenType = iota
	tokenQuoted
	tokenColon
	tokenLParen
	tokenRParen
	tokenEOF
)

type token struct {
	typ   tokenType
	value string
}

// Parse parses a filter expression. An empty input yields an empty Filter.
func Parse(input string) (*Filter, error) {
	f := &Filter{}
	input = strings.TrimSpace(input)
	if input == "" {
		return f, nil
	}

	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	if err := p.parseExpr(f); err != nil {
		return nil, err
	}
	if p.peek().typ != tokenEOF {
		return nil, fmt.Errorf("unexpected token at position %d: %s", p.pos, p.peek().value)
	}
	return f, nil
}

// Apply merges the filter into q. A filter title or date conflicting with one
// already set on q is an error.
func (f *Filter) Apply(q trainlog.PagesQuery) (trainlog.PagesQuery, error) {
	if len(f.Tags) > 0 {
		tags := trainlog.SplitTags(q.Tags)
		q.Tags = strings.Join(append(tags, f.Tags...), ",")
	}
	if f.Title != "" {
		if q.Query != "" && q.Query != f.Title {
			return q, fmt.Errorf("title given twice: %q and %q", q.Query, f.Title)
		}
		q.Query = f.Title
	}
	if f.Date != "" {
		if q.Date != "" && q.Date != f.Date {
			return q, fmt.Errorf("date given twice: %s and %s", q.Date, f.Date)
		}
		q.Date = f.Date
	}
	return q, nil
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		ch, size := utf8.DecodeRuneInString(input[i:])

		switch {
		case unicode.IsSpace(ch):
			i += size
			continue
		case ch == '(':
			tokens = append(tokens, token{tokenLParen, "("})
			i += size
			continue
		case ch == ')':
			tokens = append(tokens, token{tokenRParen, ")"})
			i += size
			continue
		case ch == ':':
			tokens = append(tokens, token{tokenColon, ":"})
			i += size
			continue
		case ch == '"':
			end := strings.IndexByte(input[i+1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("unterminated quote at position %d", i)
			}
			tokens = append(tokens, token{tokenQuoted, input[i+1 : i+1+end]})
			i += end + 2
			continue
		}

		// Read a word up to whitespace or punctuation
		start := i
		for i < len(input) {
			c, n := utf8.DecodeRuneInString(input[i:])
			if unicode.IsSpace(c) || c == '(' || c == ')' || c == ':' || c == '"' {
				break
			}
			i += n
		}
		tokens = append(tokens, token{tokenWord, input[start:i]})
	}

	tokens = append(tokens, token{tokenEOF, ""})
	return tokens, nil
}

func (p *parser) peek() token {
	if p.pos >= len(p.tokens) {
		return token{tokenEOF, ""}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.peek()
	p.pos++
	return t
}

func isKeyword(t token, kw string) bool {
	return t.typ == tokenWord && strings.EqualFold(t.value, kw)
}

func (p *parser) parseExpr(f *Filter) error {
	if err := p.parseFactor(f); err != nil {
		return err
	}

	for {
		t := p.peek()
		switch {
		case t.typ == tokenEOF, t.typ == tokenRParen:
			return nil
		case isKeyword(t, "OR"):
			return fmt.Errorf("OR is not supported; all predicates must match")
		case isKeyword(t, "AND"):
			p.next()
		}
		if err := p.parseFactor(f); err != nil {
			return err
		}
	}
}

func (p *parser) parseFactor(f *Filter) error {
	t := p.peek()

	if isKeyword(t, "NOT") {
		return fmt.Errorf("NOT is not supported")
	}

	if t.typ == tokenLParen {
		p.next()
		if err := p.parseExpr(f); err != nil {
			return err
		}
		if p.peek().typ != tokenRParen {
			return fmt.Errorf("expected closing parenthesis")
		}
		p.next()
		return nil
	}
	if t.typ == tokenRParen {
		return fmt.Errorf("unexpected closing parenthesis")
	}

	return p.parsePredicate(f)
}

func (p *parser) parsePredicate(f *Filter) error {
	key := p.next()
	if key.typ != tokenWord {
		return fmt.Errorf("expected key, got %q", key.value)
	}

	name := strings.ToLower(key.value)
	if !validKeys[name] {
		return fmt.Errorf("unknown key: %s", key.value)
	}

	if p.next().typ != tokenColon {
		return fmt.Errorf("expected ':' after key %q", key.value)
	}

	value, err := p.readValue()
	if err != nil {
		return fmt.Errorf("expected value after %s: %w", name, err)
	}

	switch name {
	case "tag":
		f.Tags = append(f.Tags, value)
	case "title":
		if f.Title != "" {
			return fmt.Errorf("title may appear only once")
		}
		f.Title = value
	case "date":
		if f.Date != "" {
			return fmt.Errorf("date may appear only once")
		}
		if _, err := time.Parse(dateLayout, value); err != nil {
			return fmt.Errorf("invalid date %q (want YYYY-MM-DD)", value)
		}
		f.Date = value
	}
	return nil
}

// readValue reads a word or quoted string. Unquoted values may contain
// colons, e.g. tag:basics:ikkyo.
func (p *parser) readValue() (string, error) {
	t := p.next()
	switch t.typ {
	case tokenEOF:
		return "", fmt.Errorf("unexpected end of input")
	case tokenQuoted:
		if strings.TrimSpace(t.value) == "" {
			return "", fmt.Errorf("empty value")
		}
		return strings.TrimSpace(t.value), nil
	case tokenWord:
	default:
		return "", fmt.Errorf("unexpected token: %q", t.value)
	}

	value := t.value
	for p.peek().typ == tokenColon {
		p.next()
		if p.peek().typ != tokenWord {
			break
		}
		value += ":" + p.next().value
	}
	return value, nil
}
