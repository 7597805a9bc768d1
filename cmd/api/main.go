package main

import (
	"os"

	"pet-adoption-catalog/cmd/api/commands"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// @title Pet Adoption Catalog API
// @version 1.0
// @BasePath /api
func main() {
	commands.SetVersionInfo(version, commit, date)

	// Los errores ya los imprime el printer con formato.
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
