package widget

import (
	"errors"
	"fmt"
	"maps"
	"reflect"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// ErrInvalidRule is returned for row rules that do not compile or yield the
// wrong type.
var ErrInvalidRule = errors.New("invalid row rule")

// RuleKind says what a row rule produces.
type RuleKind string

const (
	// RuleCSS yields a background colour or a map of CSS properties.
	RuleCSS RuleKind = "rowCss"
	// RuleClass yields a class name.
	RuleClass RuleKind = "rowClass"
)

var cssMapType = reflect.TypeOf(map[string]string{})

// Style is the styling a row receives.
type Style struct {
	Class string            `json:"class,omitempty"`
	CSS   map[string]string `json:"css,omitempty"`
}

// IsZero reports whether the style changes nothing.
func (s Style) IsZero() bool {
	return s.Class == "" && len(s.CSS) == 0
}

// RowRule is a compiled row expression.
type RowRule struct {
	kind    RuleKind
	expr    string
	program cel.Program
}

// CompileRowRule compiles a CEL expression for a row rule.
// Available variables in expressions:
//   - data (map(string, string)): the row's cell text by column name
//   - index (int): the row's position in the table
//
// A rowClass rule must return a string. A rowCss rule returns a string,
// used as the background colour, or a map(string, string) of properties.
func CompileRowRule(kind RuleKind, expr string) (*RowRule, error) {
	env, err := cel.NewEnv(
		cel.Variable("data", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("index", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRule, kind, issues.Err())
	}

	out := ast.OutputType()
	switch kind {
	case RuleClass:
		if out.Kind() != types.StringKind {
			return nil, fmt.Errorf("%w: %s must return string, got %v", ErrInvalidRule, kind, out)
		}
	case RuleCSS:
		if out.Kind() != types.StringKind && out.Kind() != types.MapKind {
			return nil, fmt.Errorf("%w: %s must return string or map, got %v", ErrInvalidRule, kind, out)
		}
	default:
		return nil, fmt.Errorf("%w: unknown rule kind %q", ErrInvalidRule, kind)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program cel expression: %w", err)
	}

	return &RowRule{kind: kind, expr: expr, program: prg}, nil
}

// Kind returns the rule kind.
func (r *RowRule) Kind() RuleKind { return r.kind }

// String returns the rule's source expression.
func (r *RowRule) String() string { return r.expr }

// Eval evaluates the rule for one row.
func (r *RowRule) Eval(index int, data map[string]string) (Style, error) {
	if data == nil {
		data = map[string]string{}
	}
	out, _, err := r.program.Eval(map[string]any{
		"data":  data,
		"index": int64(index),
	})
	if err != nil {
		return Style{}, fmt.Errorf("eval %s: %w", r.kind, err)
	}

	if s, ok := out.Value().(string); ok {
		if s == "" {
			return Style{}, nil
		}
		if r.kind == RuleClass {
			return Style{Class: s}, nil
		}
		return Style{CSS: map[string]string{"background-color": s}}, nil
	}

	if r.kind == RuleCSS {
		native, err := out.ConvertToNative(cssMapType)
		if err != nil {
			return Style{}, fmt.Errorf("eval %s: %w", r.kind, err)
		}
		css := native.(map[string]string)
		if len(css) == 0 {
			return Style{}, nil
		}
		return Style{CSS: css}, nil
	}

	return Style{}, fmt.Errorf("eval %s: result is not a string: %T", r.kind, out.Value())
}

// RowRules holds the compiled rules of one table. Either rule may be absent.
type RowRules struct {
	css   *RowRule
	class *RowRule
}

// Empty reports whether the table has no row rules.
func (rr *RowRules) Empty() bool {
	return rr == nil || (rr.css == nil && rr.class == nil)
}

// Eval applies every rule to a row and merges the styles.
func (rr *RowRules) Eval(index int, data map[string]string) (Style, error) {
	var style Style
	if rr.Empty() {
		return style, nil
	}

	if rr.css != nil {
		s, err := rr.css.Eval(index, data)
		if err != nil {
			return Style{}, err
		}
		if len(s.CSS) > 0 {
			style.CSS = maps.Clone(s.CSS)
		}
	}
	if rr.class != nil {
		s, err := rr.class.Eval(index, data)
		if err != nil {
			return Style{}, err
		}
		style.Class = s.Class
	}
	return style, nil
}
