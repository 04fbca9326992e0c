package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/parsly"
)

// Segment is one step of a path expression: a map key, optionally followed
// by a slice index.
type Segment struct {
	Name  string
	Index *int
}

// Path is a parsed resource-identification expression, e.g. "repo.full_name"
// or "targets[0].id".
type Path struct {
	segments []Segment
	text     string
}

// String returns the original expression text.
func (p *Path) String() string { return p.text }

// ParsePath parses a dotted path expression with optional [index] suffixes.
func ParsePath(expression string) (*Path, error) {
	input := []byte(strings.TrimSpace(expression))
	if len(input) == 0 {
		return nil, fmt.Errorf("empty path expression")
	}
	cursor := parsly.NewCursor("", input, 0)
	var segments []Segment

	for {
		matched := cursor.MatchOne(identifierToken)
		if matched.Code != identifierToken.Code {
			return nil, cursor.NewError(identifierToken)
		}
		segment := Segment{Name: matched.Text(cursor)}

		matched = cursor.MatchOne(openBracketToken)
		if matched.Code == openBracketToken.Code {
			matched = cursor.MatchOne(indexToken)
			if matched.Code != indexToken.Code {
				return nil, cursor.NewError(indexToken)
			}
			index, err := strconv.Atoi(matched.Text(cursor))
			if err != nil {
				return nil, fmt.Errorf("invalid index in path %q: %w", expression, err)
			}
			segment.Index = &index
			matched = cursor.MatchOne(closeBracketToken)
			if matched.Code != closeBracketToken.Code {
				return nil, cursor.NewError(closeBracketToken)
			}
		}
		segments = append(segments, segment)

		if cursor.Pos >= cursor.InputSize {
			break
		}
		matched = cursor.MatchOne(dotToken)
		if matched.Code != dotToken.Code {
			return nil, cursor.NewError(dotToken)
		}
	}
	return &Path{segments: segments, text: string(input)}, nil
}

// Select walks the argument map along the path. The boolean result is false
// when any step is missing or of an unexpected shape.
func (p *Path) Select(arguments map[string]interface{}) (interface{}, bool) {
	var current interface{} = arguments
	for _, segment := range p.segments {
		node, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = node[segment.Name]
		if !ok {
			return nil, false
		}
		if segment.Index != nil {
			items, ok := asSlice(current)
			if !ok || *segment.Index < 0 || *segment.Index >= len(items) {
				return nil, false
			}
			current = items[*segment.Index]
		}
	}
	return current, true
}

func asSlice(value interface{}) ([]interface{}, bool) {
	switch actual := value.(type) {
	case []interface{}:
		return actual, true
	case []string:
		items := make([]interface{}, len(actual))
		for i, v := range actual {
			items[i] = v
		}
		return items, true
	}
	return nil, false
}
