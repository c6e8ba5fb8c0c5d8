package register

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// MarshalJSON writes shots as arrays of booleans.
func (r BitOutputRegister) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	if r == nil {
		e.Null()
		return e.Bytes(), nil
	}
	e.ArrStart()
	for _, shot := range r {
		e.ArrStart()
		for _, b := range shot {
			e.Bool(b)
		}
		e.ArrEnd()
	}
	e.ArrEnd()
	return e.Bytes(), nil
}

// UnmarshalJSON accepts booleans and the integers 0 and 1 as bit values.
func (r *BitOutputRegister) UnmarshalJSON(data []byte) error {
	d := jx.DecodeBytes(data)
	if d.Next() == jx.Null {
		*r = nil
		return d.Null()
	}
	out := BitOutputRegister{}
	err := d.Arr(func(d *jx.Decoder) error {
		shot := []bool{}
		if err := d.Arr(func(d *jx.Decoder) error {
			b, err := decodeBit(d)
			if err != nil {
				return err
			}
			shot = append(shot, b)
			return nil
		}); err != nil {
			return err
		}
		out = append(out, shot)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to decode bit register")
	}
	*r = out
	return nil
}

func decodeBit(d *jx.Decoder) (bool, error) {
	switch tt := d.Next(); tt {
	case jx.Bool:
		return d.Bool()
	case jx.Number:
		v, err := d.Float64()
		if err != nil {
			return false, err
		}
		switch v {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return false, errors.Errorf("bit value %v is neither 0 nor 1", v)
	default:
		return false, errors.Errorf("unexpected %s in bit register", tt)
	}
}

// MarshalJSON writes every entry as a [re, im] pair.
func (r ComplexOutputRegister) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	if r == nil {
		e.Null()
		return e.Bytes(), nil
	}
	e.ArrStart()
	for _, shot := range r {
		e.ArrStart()
		for _, c := range shot {
			e.ArrStart()
			e.Float64(real(c))
			e.Float64(imag(c))
			e.ArrEnd()
		}
		e.ArrEnd()
	}
	e.ArrEnd()
	return e.Bytes(), nil
}

// UnmarshalJSON accepts [re, im] pairs and plain real numbers.
func (r *ComplexOutputRegister) UnmarshalJSON(data []byte) error {
	d := jx.DecodeBytes(data)
	if d.Next() == jx.Null {
		*r = nil
		return d.Null()
	}
	out := ComplexOutputRegister{}
	err := d.Arr(func(d *jx.Decoder) error {
		shot := []complex128{}
		if err := d.Arr(func(d *jx.Decoder) error {
			c, err := decodeComplex(d)
			if err != nil {
				return err
			}
			shot = append(shot, c)
			return nil
		}); err != nil {
			return err
		}
		out = append(out, shot)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to decode complex register")
	}
	*r = out
	return nil
}

func decodeComplex(d *jx.Decoder) (complex128, error) {
	switch tt := d.Next(); tt {
	case jx.Number:
		re, err := d.Float64()
		if err != nil {
			return 0, err
		}
		return complex(re, 0), nil
	case jx.Array:
		parts := make([]float64, 0, 2)
		if err := d.Arr(func(d *jx.Decoder) error {
			v, err := d.Float64()
			if err != nil {
				return err
			}
			parts = append(parts, v)
			return nil
		}); err != nil {
			return 0, err
		}
		if len(parts) != 2 {
			return 0, errors.Errorf("complex value needs 2 parts, got %d", len(parts))
		}
		return complex(parts[0], parts[1]), nil
	default:
		return 0, errors.Errorf("unexpected %s in complex register", tt)
	}
}
