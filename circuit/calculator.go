package circuit

import (
	"math"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/formula"
)

// CalculatorFloat is a gate parameter: a number, or a symbolic expression
// that is resolved once its free parameters are known.
type CalculatorFloat struct {
	Value  float64 `msgpack:"v"`
	Symbol string  `msgpack:"s"`
}

func Float(v float64) CalculatorFloat {
	return CalculatorFloat{Value: v}
}

func Symbol(s string) CalculatorFloat {
	return CalculatorFloat{Symbol: s}
}

func (c CalculatorFloat) IsFloat() bool {
	return c.Symbol == ""
}

func (c CalculatorFloat) String() string {
	if c.IsFloat() {
		return strconv.FormatFloat(c.Value, 'g', -1, 64)
	}
	return c.Symbol
}

// FreeParameters lists the variables of a symbolic value.
func (c CalculatorFloat) FreeParameters() ([]string, error) {
	if c.IsFloat() {
		return nil, nil
	}
	e, err := formula.Parse(c.Symbol)
	if err != nil {
		return nil, err
	}
	return e.Variables(), nil
}

// Substitute resolves a symbolic value when params binds every variable it
// uses. Values with unbound variables are returned unchanged.
func (c CalculatorFloat) Substitute(params map[string]float64) (CalculatorFloat, error) {
	if c.IsFloat() {
		return c, nil
	}
	e, err := formula.Parse(c.Symbol)
	if err != nil {
		return c, core.WrapKind(core.ErrParameterSubstitution, err, "symbol %s", c.Symbol)
	}
	if !e.Resolvable(params) {
		return c, nil
	}
	v, err := e.Evaluate(params)
	if err != nil {
		return c, core.WrapKind(core.ErrParameterSubstitution, err, "symbol %s", c.Symbol)
	}
	return Float(v), nil
}

// MarshalJSON writes a number or a string. NaN and infinities have no JSON
// form and are rejected.
func (c CalculatorFloat) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	if c.IsFloat() {
		if math.IsNaN(c.Value) || math.IsInf(c.Value, 0) {
			return nil, errors.Errorf("calculator float %v is not finite", c.Value)
		}
		e.Float64(c.Value)
	} else {
		e.Str(c.Symbol)
	}
	return e.Bytes(), nil
}

func (c *CalculatorFloat) UnmarshalJSON(data []byte) error {
	d := jx.DecodeBytes(data)
	switch tt := d.Next(); tt {
	case jx.Number:
		v, err := d.Float64()
		if err != nil {
			return err
		}
		*c = Float(v)
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return err
		}
		*c = Symbol(s)
	default:
		return errors.Errorf("unexpected %s for a calculator float", tt)
	}
	return nil
}
