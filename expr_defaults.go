package defaults

import (
	"time"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprDefaultsOption configures an ExprDefaults source.
type ExprDefaultsOption func(*ExprDefaults)

// ExprWithProgramCache wires a ProgramCache into the defaults source so
// expressions compile once.
func ExprWithProgramCache(cache ProgramCache) ExprDefaultsOption {
	return func(d *ExprDefaults) {
		d.cache = cache
	}
}

// ExprWithEnv adds static bindings available to every expression.
func ExprWithEnv(env map[string]any) ExprDefaultsOption {
	return func(d *ExprDefaults) {
		for key, value := range env {
			d.env[key] = value
		}
	}
}

// ExprDefaults produces an initial defaults map by evaluating one
// expr-lang/expr expression per attribute. It satisfies AttributeDefaulter,
// so it can back a model's AttributeDefaults hook or serve as a Persister's
// WithFallbackDefaults source.
//
// Expressions see "now" (evaluation time) plus any bindings added via
// ExprWithEnv. An expression that fails to compile or run drops its
// attribute from the result; Validate reports compile errors upfront.
type ExprDefaults struct {
	rules map[string]string
	env   map[string]any
	cache ProgramCache
}

// NewExprDefaults builds a source from a map of attribute name to expression.
func NewExprDefaults(rules map[string]string, opts ...ExprDefaultsOption) *ExprDefaults {
	d := &ExprDefaults{
		rules: make(map[string]string, len(rules)),
		env:   map[string]any{},
	}
	for name, expression := range rules {
		d.rules[name] = expression
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Validate compiles every configured expression and returns the first error.
func (d *ExprDefaults) Validate() error {
	for _, expression := range d.rules {
		if _, err := d.loadOrCompile(expression); err != nil {
			return err
		}
	}
	return nil
}

// AttributeDefaults implements AttributeDefaulter.
func (d *ExprDefaults) AttributeDefaults() map[string]any {
	if len(d.rules) == 0 {
		return map[string]any{}
	}

	env := make(map[string]any, len(d.env)+1)
	for key, value := range d.env {
		env[key] = value
	}
	env["now"] = time.Now()

	out := make(map[string]any, len(d.rules))
	for name, expression := range d.rules {
		program, err := d.loadOrCompile(expression)
		if err != nil {
			continue
		}
		value, err := exprlang.Run(program, env)
		if err != nil {
			continue
		}
		out[name] = value
	}
	return out
}

func (d *ExprDefaults) loadOrCompile(expression string) (*exprvm.Program, error) {
	if d.cache != nil {
		if cached, ok := d.cache.Get(expression); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, err
	}
	if d.cache != nil {
		d.cache.Set(expression, program)
	}
	return program, nil
}
