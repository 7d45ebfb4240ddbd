// Package main is the entry point of the video wall.
package main

import (
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/videowall/videowall/cmd"
	"github.com/videowall/videowall/config"
	"github.com/videowall/videowall/internal/sweep"
	"github.com/videowall/videowall/key"
	"github.com/videowall/videowall/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go sweep.Logs(viper.GetInt(key.LogsRetention))

	cmd.Execute()
}
