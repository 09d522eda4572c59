package main

import (
	"fmt"
	"os"

	"github.com/devcraft/storekeep/cmd/storekeep"
	"github.com/devcraft/storekeep/pkg/output/styles"
)

func main() {
	rootCmd := storekeep.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		errorStyle := styles.GetStyle("Error")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
