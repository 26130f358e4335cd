package main

import (
	"os"

	"github.com/teranos/derivegen/cmd/derivegen/commands"
	"github.com/teranos/derivegen/logger"
)

func main() {
	root := commands.NewRootCmd()
	err := root.Execute()
	logger.Cleanup()
	if err != nil {
		commands.PrintError(root.ErrOrStderr(), err)
		os.Exit(commands.ExitCode(err))
	}
}
