//go:build cli
// +build cli

package main

import (
	_ "partstrack/cron/jobs"

	"partstrack/cmd"
	"partstrack/config"
)

func main() {
	config.LoadEnv()
	config.InitRedis()
	cmd.Execute()
}
