package filter

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/kailas-cloud/richdex/internal/domain/record"
)

// celPredicate evaluates a compiled CEL program against records.
type celPredicate struct {
	prg cel.Program
}

// CompileCEL compiles a CEL expression into a Predicate. The candidate
// record is exposed to the expression as a `doc` map: text fields are
// strings, numeric fields are doubles, temporal fields are timestamps.
// Absent fields are absent from the map; expressions that need to treat
// absence explicitly can use `has()` / `in`.
func CompileCEL(expr string) (Predicate, error) {
	env, err := cel.NewEnv(
		cel.Variable("doc", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}

	return &celPredicate{prg: prg}, nil
}

// Match implements Predicate.
func (p *celPredicate) Match(r record.Record) (bool, error) {
	out, _, err := p.prg.Eval(map[string]any{"doc": docMap(r)})
	if err != nil {
		return false, fmt.Errorf("eval: %w", err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression result is %T, not bool", out.Value())
	}
	return b, nil
}

// docMap converts a record into the loosely-typed map CEL evaluates over.
func docMap(r record.Record) map[string]any {
	m := make(map[string]any, r.Len())
	for name, v := range r.Fields() {
		switch v.Kind() {
		case record.KindText:
			m[name] = v.Text()
		case record.KindNumeric:
			m[name] = v.Number()
		case record.KindTime:
			m[name] = v.Time()
		}
	}
	return m
}
