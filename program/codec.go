package program

import (
	"github.com/go-faster/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/common"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/core"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/measurement"
	"github.com/tidwall/pretty"
)

type binaryEnvelope struct {
	Versions            core.Versions      `msgpack:"versions"`
	InputParameterNames []string           `msgpack:"input_parameter_names"`
	Measurement         measurement.Tagged `msgpack:"measurement"`
}

type jsonEnvelope struct {
	Versions            core.Versions       `json:"versions"`
	InputParameterNames []string            `json:"input_parameter_names"`
	Measurement         jsoniter.RawMessage `json:"measurement"`
}

func (p *QuantumProgram) ToBinary() ([]byte, error) {
	tagged, err := measurement.ToTagged(p.Measurement)
	if err != nil {
		return nil, errors.Wrap(err, "encode measurement")
	}
	return common.MarshalMsgpack(binaryEnvelope{
		Versions:            core.CurrentVersions(),
		InputParameterNames: p.InputParameterNames,
		Measurement:         tagged,
	})
}

func FromBinary(data []byte) (*QuantumProgram, error) {
	var env binaryEnvelope
	if err := common.UnmarshalMsgpack(data, &env); err != nil {
		return nil, core.WrapKind(core.ErrDecodeFailure, err, "binary program")
	}
	if env.Measurement.Kind == "" {
		return nil, core.NewKindError(core.ErrDecodeFailure, "program without measurement")
	}
	if err := env.Versions.CheckCompatible(); err != nil {
		return nil, err
	}
	m, err := measurement.FromTagged(env.Measurement)
	if err != nil {
		return nil, err
	}
	return newDecoded(m, env.InputParameterNames)
}

func (p *QuantumProgram) ToJSON() (string, error) {
	m, err := measurement.ToJSON(p.Measurement)
	if err != nil {
		return "", errors.Wrap(err, "encode measurement")
	}
	return common.StrictJSON.MarshalToString(jsonEnvelope{
		Versions:            core.CurrentVersions(),
		InputParameterNames: p.InputParameterNames,
		Measurement:         jsoniter.RawMessage(m),
	})
}

func (p *QuantumProgram) ToPrettyJSON() (string, error) {
	s, err := p.ToJSON()
	if err != nil {
		return "", err
	}
	return string(pretty.Pretty([]byte(s))), nil
}

func FromJSON(data string) (*QuantumProgram, error) {
	if err := common.CheckDuplicateKeys([]byte(data)); err != nil {
		return nil, core.WrapKind(core.ErrDecodeFailure, err, "json program")
	}
	var env jsonEnvelope
	if err := common.StrictJSON.UnmarshalFromString(data, &env); err != nil {
		return nil, core.WrapKind(core.ErrDecodeFailure, err, "json program")
	}
	if len(env.Measurement) == 0 || string(env.Measurement) == "null" {
		return nil, core.NewKindError(core.ErrDecodeFailure, "program without measurement")
	}
	if err := env.Versions.CheckCompatible(); err != nil {
		return nil, err
	}
	m, err := measurement.FromJSON(string(env.Measurement))
	if err != nil {
		return nil, err
	}
	return newDecoded(m, env.InputParameterNames)
}

func newDecoded(m measurement.Measurement, names []string) (*QuantumProgram, error) {
	p, err := New(m, names)
	if err != nil {
		return nil, core.WrapKind(core.ErrDecodeFailure, err, "program")
	}
	return p, nil
}
