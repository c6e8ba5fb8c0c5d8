package formula

import (
	"math"

	"github.com/go-faster/errors"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

var errNotReal = errors.New("value is not a finite real number")

// functions callable from formulas. All of them take and return numbers.
var functions = map[string]function.Function{
	"sin":   unaryMath(math.Sin),
	"cos":   unaryMath(math.Cos),
	"tan":   unaryMath(math.Tan),
	"asin":  unaryMath(math.Asin),
	"acos":  unaryMath(math.Acos),
	"atan":  unaryMath(math.Atan),
	"sinh":  unaryMath(math.Sinh),
	"cosh":  unaryMath(math.Cosh),
	"tanh":  unaryMath(math.Tanh),
	"exp":   unaryMath(math.Exp),
	"log":   unaryMath(math.Log),
	"ln":    unaryMath(math.Log),
	"log10": unaryMath(math.Log10),
	"sqrt":  unaryMath(math.Sqrt),
	"pow":   binaryMath(math.Pow),
	"atan2": binaryMath(math.Atan2),
	"abs":   stdlib.AbsoluteFunc,
	"floor": stdlib.FloorFunc,
	"ceil":  stdlib.CeilFunc,
	"sign":  stdlib.SignumFunc,
	"min":   stdlib.MinFunc,
	"max":   stdlib.MaxFunc,
}

// constants available without being declared.
var constants = map[string]float64{
	"pi": math.Pi,
}

func unaryMath(fn func(float64) float64) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "x", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			x, _ := args[0].AsBigFloat().Float64()
			return realValue(fn(x))
		},
	})
}

func binaryMath(fn func(float64, float64) float64) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "x", Type: cty.Number},
			{Name: "y", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			x, _ := args[0].AsBigFloat().Float64()
			y, _ := args[1].AsBigFloat().Float64()
			return realValue(fn(x, y))
		},
	})
}

// realValue refuses NaN and infinities, which cty numbers cannot carry.
func realValue(v float64) (cty.Value, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return cty.NilVal, errNotReal
	}
	return cty.NumberFloatVal(v), nil
}

func arityMatches(fn function.Function, n int) bool {
	required := len(fn.Params())
	if fn.VarParam() != nil {
		return n >= required
	}
	return n == required
}
