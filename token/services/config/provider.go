/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"bytes"
	_ "embed"
	"reflect"
	"strings"

	"github.com/hyperledger-labs/token-custody/token/token"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables overriding configuration keys
const EnvPrefix = "TOKENBANK"

//go:embed core.yaml
var defaults []byte

type Provider interface {
	// UnmarshalKey decodes the subtree at key into rawVal. An empty key decodes the whole configuration.
	UnmarshalKey(key string, rawVal interface{}) error
	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	IsSet(key string) bool
}

// ViperProvider reads the embedded defaults, an optional configuration file and the environment
type ViperProvider struct {
	v *viper.Viper
}

// NewProvider loads the defaults and merges the configuration file at path, if path is not empty
func NewProvider(path string) (*ViperProvider, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, errors.Wrap(err, "failed reading default configuration")
	}
	if len(path) != 0 {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed reading configuration file [%s]", path)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &ViperProvider{v: v}, nil
}

// MergeConfig merges the passed yaml on top of the current configuration
func (p *ViperProvider) MergeConfig(raw []byte) error {
	return p.v.MergeConfig(bytes.NewReader(raw))
}

func (p *ViperProvider) UnmarshalKey(key string, rawVal interface{}) error {
	// AllSettings resolves every known key, environment overrides included
	var value interface{} = p.v.AllSettings()
	if len(key) != 0 {
		for _, part := range strings.Split(strings.ToLower(key), ".") {
			m, ok := value.(map[string]interface{})
			if !ok {
				return errors.Errorf("key [%s] not found", key)
			}
			if value, ok = m[part]; !ok {
				return errors.Errorf("key [%s] not found", key)
			}
		}
	}
	return Decode(value, rawVal)
}

func (p *ViperProvider) GetString(key string) string {
	return p.v.GetString(key)
}

func (p *ViperProvider) GetBool(key string) bool {
	return p.v.GetBool(key)
}

func (p *ViperProvider) GetInt(key string) int {
	return p.v.GetInt(key)
}

func (p *ViperProvider) IsSet(key string) bool {
	return p.v.IsSet(key)
}

// Decode decodes input into output. Token identities are read from their base58 form,
// quantities from decimal or hexadecimal strings, and lists from comma-separated strings.
func Decode(input interface{}, output interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			stringToQuantityHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return errors.Wrap(err, "failed creating decoder")
	}
	return decoder.Decode(input)
}

func stringToQuantityHookFunc() mapstructure.DecodeHookFuncType {
	quantityType := reflect.TypeOf(token.Quantity(0))
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != quantityType {
			return data, nil
		}
		return token.ToQuantity(data.(string))
	}
}
