package main

import (
	"errors"
	"os"

	"github.com/seyud/gpugov/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var exit *cmd.ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}

		cmd.Error(err)
		cmd.Usage()
	}
}
