package measurement

import (
	"github.com/go-faster/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/common"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/tidwall/pretty"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// binaryEnvelope frames every binary measurement payload. The body is the
// msgpack encoding of the concrete measurement named by Kind.
type binaryEnvelope struct {
	Versions core.Versions      `msgpack:"versions"`
	Kind     string             `msgpack:"kind"`
	Body     msgpack.RawMessage `msgpack:"body"`
}

type jsonEnvelope struct {
	Versions core.Versions       `json:"versions"`
	Kind     string              `json:"kind"`
	Body     jsoniter.RawMessage `json:"body"`
}

// Tagged is a binary payload labelled with its measurement kind, for
// receivers that only hold a generic handle.
type Tagged struct {
	Kind    string `json:"kind" msgpack:"kind"`
	Payload []byte `json:"payload" msgpack:"payload"`
}

func newOfKind(k Kind) (Measurement, error) {
	switch k {
	case KindBasisRotation:
		return &BasisRotation{}, nil
	case KindCheatedBasisRotation:
		return &CheatedBasisRotation{}, nil
	case KindCheated:
		return &Cheated{}, nil
	case KindClassicalRegister:
		return &ClassicalRegister{}, nil
	default:
		return nil, core.NewKindError(core.ErrUnknownMeasurementKind, "%s", k)
	}
}

func ToBinary(m Measurement) ([]byte, error) {
	if m == nil {
		return nil, errors.New("nil measurement")
	}
	body, err := common.MarshalMsgpack(m)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", m.Kind())
	}
	return common.MarshalMsgpack(binaryEnvelope{
		Versions: core.CurrentVersions(),
		Kind:     m.Kind().String(),
		Body:     body,
	})
}

// FromBinary decodes a payload written by ToBinary, whatever its kind.
func FromBinary(data []byte) (Measurement, error) {
	var env binaryEnvelope
	if err := common.UnmarshalMsgpack(data, &env); err != nil {
		return nil, core.WrapKind(core.ErrDecodeFailure, err, "binary envelope")
	}
	hasBody := len(env.Body) > 0 && env.Body[0] != msgpcode.Nil
	return decodeBody(env.Versions, env.Kind, hasBody, func(m Measurement) error {
		return common.UnmarshalMsgpack(env.Body, m)
	})
}

func ToJSON(m Measurement) (string, error) {
	if m == nil {
		return "", errors.New("nil measurement")
	}
	body, err := common.StrictJSON.Marshal(m)
	if err != nil {
		return "", errors.Wrapf(err, "encode %s", m.Kind())
	}
	return common.StrictJSON.MarshalToString(jsonEnvelope{
		Versions: core.CurrentVersions(),
		Kind:     m.Kind().String(),
		Body:     body,
	})
}

// ToPrettyJSON is ToJSON indented for reading.
func ToPrettyJSON(m Measurement) (string, error) {
	s, err := ToJSON(m)
	if err != nil {
		return "", err
	}
	return string(pretty.Pretty([]byte(s))), nil
}

func FromJSON(data string) (Measurement, error) {
	if err := common.CheckDuplicateKeys([]byte(data)); err != nil {
		return nil, core.WrapKind(core.ErrDecodeFailure, err, "json measurement")
	}
	var env jsonEnvelope
	if err := common.StrictJSON.UnmarshalFromString(data, &env); err != nil {
		return nil, core.WrapKind(core.ErrDecodeFailure, err, "json envelope")
	}
	hasBody := len(env.Body) > 0 && string(env.Body) != "null"
	return decodeBody(env.Versions, env.Kind, hasBody, func(m Measurement) error {
		return common.StrictJSON.Unmarshal(env.Body, m)
	})
}

func decodeBody(versions core.Versions, kind string, hasBody bool, decode func(Measurement) error) (Measurement, error) {
	if kind == "" || !hasBody {
		return nil, core.NewKindError(core.ErrDecodeFailure, "incomplete envelope")
	}
	if err := versions.CheckCompatible(); err != nil {
		return nil, err
	}
	k, err := ToKind(kind)
	if err != nil {
		return nil, core.WrapKind(core.ErrDecodeFailure, err, "kind")
	}
	m, err := newOfKind(k)
	if err != nil {
		return nil, core.WrapKind(core.ErrDecodeFailure, err, "kind")
	}
	if err := decode(m); err != nil {
		return nil, core.WrapKind(core.ErrDecodeFailure, err, "%s body", k)
	}
	if err := m.Validate(); err != nil {
		return nil, core.WrapKind(core.ErrDecodeFailure, err, "%s", k)
	}
	return m, nil
}

// DecodeBinaryAs decodes a binary payload that must hold a T.
func DecodeBinaryAs[T Measurement](data []byte) (T, error) {
	m, err := FromBinary(data)
	return as[T](m, err)
}

// DecodeJSONAs decodes a JSON payload that must hold a T.
func DecodeJSONAs[T Measurement](data string) (T, error) {
	m, err := FromJSON(data)
	return as[T](m, err)
}

func as[T Measurement](m Measurement, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	v, ok := m.(T)
	if !ok {
		return zero, core.NewKindError(core.ErrDecodeFailure, "payload holds a %s measurement", m.Kind())
	}
	return v, nil
}

func ToTagged(m Measurement) (Tagged, error) {
	payload, err := ToBinary(m)
	if err != nil {
		return Tagged{}, err
	}
	return Tagged{Kind: m.Kind().String(), Payload: payload}, nil
}

// FromTagged decodes t and checks that the payload matches its tag.
func FromTagged(t Tagged) (Measurement, error) {
	k, err := ToKind(t.Kind)
	if err != nil {
		return nil, core.WrapKind(core.ErrDecodeFailure, err, "tag")
	}
	m, err := FromBinary(t.Payload)
	if err != nil {
		return nil, err
	}
	if m.Kind() != k {
		return nil, core.NewKindError(core.ErrDecodeFailure, "tag %s, payload holds %s", k, m.Kind())
	}
	return m, nil
}
