package main

import (
	"os"

	"github.com/goapi-io/goapi-idx/cmd/idx/commands"
)

// main is the entry point for the IDX CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/idx [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
