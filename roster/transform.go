package roster

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// NameTransform rewrites a team name as exported by the registration
// system into the name shown on the score sheet.
type NameTransform interface {
	Transform(name string) (string, error)
}

// exprTransform is a NameTransform backed by a compiled expr-lang program
// with a single variable, name.
type exprTransform struct {
	source  string
	program *vm.Program
}

// CompileTransform compiles an expression such as
// `trim(replace(name, "Team ", ""))`. An empty expression yields the
// identity transform.
func CompileTransform(expression string) (NameTransform, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return identity{}, nil
	}
	program, err := expr.Compile(expression, expr.Env(map[string]any{"name": ""}), expr.AsKind(reflect.String))
	if err != nil {
		return nil, fmt.Errorf("compile name transform %q: %w", expression, err)
	}
	return &exprTransform{source: expression, program: program}, nil
}

func (t *exprTransform) Transform(name string) (string, error) {
	result, err := expr.Run(t.program, map[string]any{"name": name})
	if err != nil {
		return "", fmt.Errorf("evaluate name transform %q: %w", t.source, err)
	}
	s, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("name transform %q evaluated to %T, expected string", t.source, result)
	}
	return s, nil
}

func (t *exprTransform) String() string { return t.source }

type identity struct{}

func (identity) Transform(name string) (string, error) { return name, nil }
