package main

import (
	cmd "github.com/userhub/userhub/cmd/userhub"
	"github.com/userhub/userhub/internal"
)

var log = internal.GetLogger()

func main() {
	log.Info("Starting userhub")
	cmd.Execute()
}
