package measurement

import (
	"sort"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/formula"
	"go.uber.org/multierr"
)

// ProductVariablePrefix prefixes the variable name under which a symbolic
// expectation value sees Pauli product i.
const ProductVariablePrefix = "pauli_product_"

// ExpVal is how one named expectation value is derived from the Pauli
// product values: either a linear combination keyed by product index, or a
// formula over pauli_product_<i> variables. Exactly one form is set.
type ExpVal struct {
	Linear   map[int]float64 `json:"linear" msgpack:"linear"`
	Symbolic string          `json:"symbolic" msgpack:"symbolic"`
}

func LinearExpVal(coefficients map[int]float64) ExpVal {
	if coefficients == nil {
		coefficients = map[int]float64{}
	}
	return ExpVal{Linear: coefficients}
}

func SymbolicExpVal(expression string) ExpVal {
	return ExpVal{Symbolic: expression}
}

func (e ExpVal) IsSymbolic() bool {
	return e.Linear == nil
}

func ProductVariable(index int) string {
	return ProductVariablePrefix + strconv.Itoa(index)
}

// productIndex parses a pauli_product_<i> variable name.
func productIndex(name string) (int, bool) {
	if !strings.HasPrefix(name, ProductVariablePrefix) {
		return 0, false
	}
	digits := strings.TrimPrefix(name, ProductVariablePrefix)
	if digits == "" || (len(digits) > 1 && digits[0] == '0') {
		return 0, false
	}
	i, err := strconv.Atoi(digits)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// check verifies that e only references products below numberProducts.
func (e ExpVal) check(name string, numberProducts int) error {
	switch {
	case e.Linear != nil && e.Symbolic != "":
		return core.NewKindError(core.ErrInvalidFormula, "%s is both linear and symbolic", name)
	case e.Linear != nil:
		for i := range e.Linear {
			if i < 0 || i >= numberProducts {
				return core.NewKindError(core.ErrUndeclaredFormulaVariable,
					"%s uses Pauli product %d, only %d declared", name, i, numberProducts)
			}
		}
		return nil
	case e.Symbolic == "":
		return core.NewKindError(core.ErrInvalidFormula, "%s has neither a linear nor a symbolic form", name)
	}
	expr, err := formula.Parse(e.Symbolic)
	if err != nil {
		return core.WrapKind(core.ErrInvalidFormula, err, "%s", name)
	}
	for _, v := range expr.Variables() {
		i, ok := productIndex(v)
		if !ok || i >= numberProducts {
			return core.NewKindError(core.ErrUndeclaredFormulaVariable,
				"%s uses %s, only %d Pauli products declared", name, v, numberProducts)
		}
	}
	return nil
}

func checkExpVals(expVals map[string]ExpVal, numberProducts int) error {
	var errs error
	for _, name := range sortedNames(expVals) {
		errs = multierr.Append(errs, expVals[name].check(name, numberProducts))
	}
	return errs
}

// addExpVal stores e under name in expVals after checking it.
func addExpVal(expVals map[string]ExpVal, name string, e ExpVal, numberProducts int) error {
	if _, ok := expVals[name]; ok {
		return core.NewKindError(core.ErrDuplicateResultName, "%s", name)
	}
	if err := e.check(name, numberProducts); err != nil {
		return err
	}
	expVals[name] = e
	return nil
}

// combine reduces the Pauli product values to the named expectation values.
// Linear forms take the weighted sum; symbolic forms are evaluated with
// pauli_product_<i> bound to products[i].
func combine(products []float64, expVals map[string]ExpVal) (map[string]float64, error) {
	var vars map[string]float64
	out := make(map[string]float64, len(expVals))
	for _, name := range sortedNames(expVals) {
		e := expVals[name]
		if !e.IsSymbolic() {
			v := 0.0
			for _, i := range sortedIndices(e.Linear) {
				if i < 0 || i >= len(products) {
					return nil, core.NewKindError(core.ErrUndeclaredFormulaVariable,
						"%s uses Pauli product %d, only %d measured", name, i, len(products))
				}
				v += e.Linear[i] * products[i]
			}
			out[name] = v
			continue
		}
		if vars == nil {
			vars = make(map[string]float64, len(products))
			for i, p := range products {
				vars[ProductVariable(i)] = p
			}
		}
		v, err := formula.Evaluate(e.Symbolic, vars)
		if err != nil {
			return nil, errors.Wrapf(err, "expectation value %s", name)
		}
		out[name] = v
	}
	return out, nil
}

func sortedNames[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedIndices(m map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
