// Package main is the entry point for the streampane application.
package main

import (
	"github.com/samber/lo"
	"github.com/streampane/streampane/cmd"
	"github.com/streampane/streampane/config"
	"github.com/streampane/streampane/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
