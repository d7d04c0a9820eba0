package anyk

import (
	"github.com/kestrel-search/anyk/internal/indexer/tokenizer"
)

// ParserMode selects how Parse tokenizes a query string. Only the
// "query" mode is implemented; the set exists for parity with the
// driver surface's parse(term_list, text, parser_mode) contract.
type ParserMode int

const (
	// ParserModeQuery is a flat, unweighted list of terms: every term
	// contributes its own impact-ordered posting lists independently,
	// with no boolean AND/OR/NOT combination.
	ParserModeQuery ParserMode = iota
)

// Parser turns query text into the term list a Processor iterates
// over. It is a thin collaborator, not a boolean query language: a
// top-k processor scores every term's postings, it does not filter by
// boolean membership.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse returns the tokens of text, in order, as a new term list. Mode
// is accepted for contract parity but only ParserModeQuery exists.
func (p *Parser) Parse(text string, mode ParserMode) []string {
	tokens := tokenizer.Tokenize(text)
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.Term
	}
	return terms
}
