package main

import (
	"os"

	// Embedded zone data so TIMEZONE works in minimal containers.
	_ "time/tzdata"

	"clinicreport/cmd/clinicreport/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
