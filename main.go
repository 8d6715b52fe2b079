package main

import (
	"os"
	"runtime/debug"

	"faucetd/cmd"
	"faucetd/logx"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			_ = logx.Errorf("FAUCETD CRASHED: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	cmd.Execute()
}
