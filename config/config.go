// Package config wires viper to the registered defaults, the TOML config
// file and the VIDEOWALL_ environment.
package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/videowall/videowall/constant"
	"github.com/videowall/videowall/filesystem"
	"github.com/videowall/videowall/where"
)

// fileType is the format of the config file.
const fileType = "toml"

// EnvKeyReplacer maps config keys to environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Path is where the config file is read from and written to.
func Path() string {
	return filepath.Join(where.Config(), constant.App+"."+fileType)
}

// Setup loads defaults, the environment and the config file, in increasing
// order of precedence below flags. A missing file is not an error.
func Setup() error {
	viper.SetFs(filesystem.API())
	viper.SetConfigName(constant.App)
	viper.SetConfigType(fileType)
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, k := range EnvExposed {
		viper.MustBindEnv(k)
	}

	viper.SetTypeByDefaultValue(true)
	for k, field := range Default {
		viper.SetDefault(k, field.Value)
	}

	var notFound viper.ConfigFileNotFoundError
	if err := viper.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return err
	}
	return nil
}
