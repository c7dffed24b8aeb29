// Package main is the entry point of the kiosk player.
package main

import (
	"github.com/carekiosk/kiosk/cmd"
	"github.com/carekiosk/kiosk/config"
	"github.com/carekiosk/kiosk/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
