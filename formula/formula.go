// Package formula parses and evaluates the arithmetic expressions used by
// symbolic expectation values and symbolic circuit parameters.
//
// Supported syntax: numeric literals, variables, + - * /, unary minus,
// parentheses and the functions listed in functions.go.
package formula

import (
	"math"
	"sort"

	"github.com/go-faster/errors"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/zclconf/go-cty/cty"
)

const sourceName = "formula"

type Expression struct {
	source    string
	expr      hclsyntax.Expression
	variables []string
}

// Parse checks the syntax of src and the names and arities of the called
// functions. Any problem is reported as core.ErrInvalidFormula.
func Parse(src string) (*Expression, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), sourceName, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, core.NewKindError(core.ErrInvalidFormula, "%s: %s", src, diags.Error())
	}
	if err := checkNodes(expr); err != nil {
		return nil, core.NewKindError(core.ErrInvalidFormula, "%s: %s", src, err)
	}

	seen := map[string]struct{}{}
	variables := []string{}
	for _, traversal := range expr.Variables() {
		name := traversal.RootName()
		if _, ok := constants[name]; ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		variables = append(variables, name)
	}
	sort.Strings(variables)

	return &Expression{
		source:    src,
		expr:      expr,
		variables: variables,
	}, nil
}

func MustParse(src string) *Expression {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Expression) String() string {
	return e.source
}

// Variables returns the sorted free variable names. Built-in constants are
// not listed.
func (e *Expression) Variables() []string {
	out := make([]string, len(e.variables))
	copy(out, e.variables)
	return out
}

// Resolvable reports whether vars binds every free variable.
func (e *Expression) Resolvable(vars map[string]float64) bool {
	for _, name := range e.variables {
		if _, ok := vars[name]; !ok {
			return false
		}
	}
	return true
}

// Evaluate binds vars and reduces the expression to a float. A free variable
// missing from vars is core.ErrUndeclaredFormulaVariable. A result that is
// not a finite real number, including a failing math function such as
// sqrt(-1), is core.ErrNonRealFormulaResult.
func (e *Expression) Evaluate(vars map[string]float64) (float64, error) {
	ctxVars := make(map[string]cty.Value, len(constants)+len(e.variables))
	for name, v := range constants {
		ctxVars[name] = cty.NumberFloatVal(v)
	}
	for _, name := range e.variables {
		v, ok := vars[name]
		if !ok {
			return 0, core.NewKindError(core.ErrUndeclaredFormulaVariable,
				"%s is not bound in %s", name, e.source)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, core.NewKindError(core.ErrNonRealFormulaResult,
				"%s is bound to %v in %s", name, v, e.source)
		}
		ctxVars[name] = cty.NumberFloatVal(v)
	}

	val, diags := e.expr.Value(&hcl.EvalContext{
		Variables: ctxVars,
		Functions: functions,
	})
	if diags.HasErrors() {
		return 0, core.NewKindError(core.ErrNonRealFormulaResult, "%s: %s", e.source, diags.Error())
	}
	if val.IsNull() || !val.IsKnown() || !val.Type().Equals(cty.Number) {
		return 0, core.NewKindError(core.ErrNonRealFormulaResult,
			"%s does not reduce to a number", e.source)
	}
	f, _ := val.AsBigFloat().Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, core.NewKindError(core.ErrNonRealFormulaResult, "%s evaluates to %v", e.source, f)
	}
	return f, nil
}

// Evaluate parses and evaluates src in one step.
func Evaluate(src string, vars map[string]float64) (float64, error) {
	e, err := Parse(src)
	if err != nil {
		return 0, err
	}
	return e.Evaluate(vars)
}

// checkNodes rejects every construct that is not plain arithmetic so that
// evaluation can only fail for numeric reasons.
func checkNodes(expr hclsyntax.Expression) error {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		if !e.Val.Type().Equals(cty.Number) {
			return errors.Errorf("literal %s is not a number", e.Val.Type().FriendlyName())
		}
		return nil
	case *hclsyntax.ScopeTraversalExpr:
		if len(e.Traversal) != 1 {
			return errors.Errorf("%s is not a plain variable", traversalName(e.Traversal))
		}
		return nil
	case *hclsyntax.FunctionCallExpr:
		fn, ok := functions[e.Name]
		if !ok {
			return errors.Errorf("unknown function %s", e.Name)
		}
		if e.ExpandFinal {
			return errors.Errorf("argument expansion is not supported in %s", e.Name)
		}
		if !arityMatches(fn, len(e.Args)) {
			return errors.Errorf("wrong number of arguments for %s: %d", e.Name, len(e.Args))
		}
		for _, arg := range e.Args {
			if err := checkNodes(arg); err != nil {
				return err
			}
		}
		return nil
	case *hclsyntax.BinaryOpExpr:
		if !isArithmetic(e.Op) {
			return errors.New("only arithmetic operators are supported")
		}
		if err := checkNodes(e.LHS); err != nil {
			return err
		}
		return checkNodes(e.RHS)
	case *hclsyntax.UnaryOpExpr:
		if e.Op != hclsyntax.OpNegate {
			return errors.New("only unary minus is supported")
		}
		return checkNodes(e.Val)
	case *hclsyntax.ParenthesesExpr:
		return checkNodes(e.Expression)
	default:
		return errors.Errorf("unsupported expression %T", expr)
	}
}

func isArithmetic(op *hclsyntax.Operation) bool {
	switch op {
	case hclsyntax.OpAdd, hclsyntax.OpSubtract, hclsyntax.OpMultiply, hclsyntax.OpDivide:
		return true
	}
	return false
}

func traversalName(t hcl.Traversal) string {
	name := t.RootName()
	for _, step := range t[1:] {
		switch s := step.(type) {
		case hcl.TraverseAttr:
			name += "." + s.Name
		default:
			name += "[...]"
		}
	}
	return name
}

// Functions returns the names of the callable functions.
func Functions() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
