package config

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/custodia-chain/custodia/etherman"
	"github.com/custodia-chain/custodia/inventory"
	"github.com/custodia-chain/custodia/log"
	"github.com/custodia-chain/custodia/qr"
	"github.com/custodia-chain/custodia/reconciler"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

const (
	// FlagCfg is the flag for cfg.
	FlagCfg = "cfg"
	// FlagComponents is the flag for components.
	FlagComponents = "components"

	// EnvVarPrefix prefixes the env vars that override config file fields,
	// e.g. CUSTODIA_LOG_LEVEL overrides Log.Level
	EnvVarPrefix = "CUSTODIA"
	// ConfigType is the format of the config files
	ConfigType = "toml"
)

/*
Config represents the configuration of the entire custodia node.
The file is [TOML format].

[TOML format]: https://en.wikipedia.org/wiki/TOML
*/
type Config struct {
	// Configure Log level for all the services, allow also to store the logs in a file
	Log log.Config
	// Configuration of the ledger client (access to the chain holding the SupplyChain contract)
	Etherman etherman.Config
	// Configuration of the off-chain projection store
	Inventory inventory.Config
	// Configuration of the consistency-gap reconciler
	Reconciler reconciler.Config
	// RPC is the config for the JSON-RPC server
	RPC jRPC.Config
	// QR is the config of the tracking-token issuer
	QR qr.Config
}

// Default parses the default configuration values.
func Default() (*Config, error) {
	var cfg Config
	viper.SetConfigType(ConfigType)

	err := viper.ReadConfig(bytes.NewBuffer([]byte(DefaultValues)))
	if err != nil {
		return nil, err
	}
	err = viper.Unmarshal(&cfg, decodeHooks()...)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load loads the configuration: default values, overridden by the config file
// of the --cfg flag (if any), overridden by CUSTODIA_* env vars.
func Load(ctx *cli.Context) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	configFilePath := ctx.String(FlagCfg)
	if configFilePath != "" {
		dirName, fileName := filepath.Split(configFilePath)

		fileExtension := strings.TrimPrefix(filepath.Ext(fileName), ".")
		fileNameWithoutExtension := strings.TrimSuffix(fileName, "."+fileExtension)

		viper.AddConfigPath(dirName)
		viper.SetConfigName(fileNameWithoutExtension)
		viper.SetConfigType(fileExtension)
	}

	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.SetEnvPrefix(EnvVarPrefix)
	viper.AutomaticEnv()

	if err = viper.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundErr) {
			return nil, err
		}
		if configFilePath != "" {
			return nil, err
		}
		log.Infof("config file not found, using defaults and env vars")
	}

	if err = viper.Unmarshal(&cfg, decodeHooks()...); err != nil {
		return nil, err
	}

	return cfg, nil
}

func decodeHooks() []viper.DecoderConfigOption {
	return []viper.DecoderConfigOption{
		// this allows arrays to be decoded from env var separated by ",", example: MY_VAR="value1,value2,value3"
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(), mapstructure.StringToSliceHookFunc(","))),
	}
}
