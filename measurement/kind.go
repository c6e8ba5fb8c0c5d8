package measurement

import (
	"github.com/go-faster/errors"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindBasisRotation
	KindCheatedBasisRotation
	KindCheated
	KindClassicalRegister
)

func (k Kind) String() string {
	switch k {
	case KindBasisRotation:
		return "BasisRotation"
	case KindCheatedBasisRotation:
		return "CheatedBasisRotation"
	case KindCheated:
		return "Cheated"
	case KindClassicalRegister:
		return "ClassicalRegister"
	default:
		return "Unknown"
	}
}

// ReturnsExpectationValues reports whether measurements of this kind are
// reduced to named expectation values rather than raw registers.
func (k Kind) ReturnsExpectationValues() bool {
	return k == KindBasisRotation || k == KindCheatedBasisRotation || k == KindCheated
}

func ToKind(s string) (Kind, error) {
	switch s {
	case "BasisRotation":
		return KindBasisRotation, nil
	case "CheatedBasisRotation":
		return KindCheatedBasisRotation, nil
	case "Cheated":
		return KindCheated, nil
	case "ClassicalRegister":
		return KindClassicalRegister, nil
	default:
		return KindUnknown, errors.Wrapf(core.ErrUnknownMeasurementKind, "%q", s)
	}
}
