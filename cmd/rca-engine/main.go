package main

import (
	"os"

	"github.com/arclight-labs/rca-engine/cmd/rca-engine/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
