package core

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/go-faster/errors"
	"github.com/oqtopus-team/oqtopus-engine/measureapp/common"
	"go.uber.org/zap"
)

var globalSetting *Setting

type Setting struct {
	ComponentSetting map[string]interface{} `toml:"com,omitempty"`
}

func ResetSetting() {
	globalSetting = newSetting()
}

func RegisterSetting(settingName string, settingVal interface{}) {
	if globalSetting == nil {
		ResetSetting()
	}
	globalSetting.registerSetting(settingName, settingVal)
}

func ParseSettingFromPath(settingsPath string) error {
	tomlString, err := common.ReadSettingsFile(settingsPath)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to read setting file/reason:%s", err))
		return err
	}
	return ParseSetting(tomlString)
}

func ParseSetting(tomlString string) error {
	if globalSetting == nil {
		ResetSetting()
	}
	return globalSetting.parseSetting(tomlString)
}

func GetGlobalSetting() *Setting {
	return globalSetting
}

func GetComponentSetting(name string) (interface{}, bool) {
	if globalSetting == nil {
		zap.L().Error("Setting is not initialized")
		return nil, false
	}
	val, ok := globalSetting.ComponentSetting[name]
	return val, ok
}

// DecodeComponentSetting fills out with the `[com.<name>]` table of the parsed
// setting file. Keys missing from the file keep the values already in out, so
// callers pass a struct holding their defaults. It reports whether the table
// was present.
func DecodeComponentSetting(name string, out interface{}) (bool, error) {
	val, ok := GetComponentSetting(name)
	if !ok {
		return false, nil
	}
	table, ok := val.(map[string]interface{})
	if !ok {
		// still the registered default
		return false, nil
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(table); err != nil {
		return false, errors.Wrapf(err, "failed to re-encode setting %s", name)
	}
	if _, err := toml.Decode(buf.String(), out); err != nil {
		return false, errors.Wrapf(err, "failed to decode setting %s", name)
	}
	return true, nil
}

func newSetting() *Setting {
	return &Setting{
		ComponentSetting: make(map[string]interface{}),
	}
}

func (s *Setting) registerSetting(settingName string, settingVal interface{}) {
	s.ComponentSetting[settingName] = settingVal
}

func (s *Setting) parseSetting(tomlString string) error {
	_, err := toml.Decode(tomlString, s)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse setting/reason:%s", err))
		return err
	}
	zap.L().Debug(fmt.Sprintf("Setting is %v", s.ComponentSetting))
	return nil
}
