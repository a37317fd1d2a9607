package main

import (
	"os"

	flexpolicycmder "github.com/checkeredai/flexpolicy/cmd/flexpolicy"
)

func main() {
	cmd := flexpolicycmder.NewFlexPolicyCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
