package resolver

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	identifierCode = iota + 1
	dotCode
	openBracketCode
	closeBracketCode
	indexCode
)

// Token definitions
var (
	identifierToken   = parsly.NewToken(identifierCode, "Identifier", &identifierMatcher{})
	dotToken          = parsly.NewToken(dotCode, ".", matcher.NewByte('.'))
	openBracketToken  = parsly.NewToken(openBracketCode, "[", matcher.NewByte('['))
	closeBracketToken = parsly.NewToken(closeBracketCode, "]", matcher.NewByte(']'))
	indexToken        = parsly.NewToken(indexCode, "Index", &indexMatcher{})
)

// identifierMatcher matches argument key names: letters, digits, '_' and '-',
// starting with a letter or underscore.
type identifierMatcher struct{}

func (m *identifierMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size {
		return 0
	}
	if !isLetter(input[pos]) && input[pos] != '_' {
		return 0
	}
	matched := 1
	for i := pos + 1; i < size; i++ {
		if isLetter(input[i]) || isDigit(input[i]) || input[i] == '_' || input[i] == '-' {
			matched++
			continue
		}
		break
	}
	return matched
}

// indexMatcher matches a non-negative integer slice index.
type indexMatcher struct{}

func (m *indexMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	matched := 0
	for i := pos; i < size; i++ {
		if !isDigit(input[i]) {
			break
		}
		matched++
	}
	return matched
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
