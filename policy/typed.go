package policy

import (
	"context"

	"github.com/toolgate/toolgate/model"
	"github.com/viant/structology/conv"
)

var argsConverter = newArgsConverter()

func newArgsConverter() *conv.Converter {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	return conv.NewConverter(options)
}

// Typed builds a predicate whose condition receives the request arguments
// converted into T, so predicates can inspect tool arguments through a
// typed view instead of digging through raw maps. When conversion fails the
// condition is treated as met – a predicate evaluated against arguments it
// cannot read escalates rather than waves the call through.
func Typed[T any](name string, outcome model.Outcome, when func(ctx context.Context, input *Input, args *T) bool) Predicate {
	return Predicate{
		Name:    name,
		Outcome: outcome,
		When: func(ctx context.Context, input *Input) bool {
			args := new(T)
			var raw map[string]interface{}
			if input != nil && input.Request != nil {
				raw = input.Request.Arguments
			}
			if err := argsConverter.Convert(raw, args); err != nil {
				return true
			}
			return when(ctx, input, args)
		},
	}
}
