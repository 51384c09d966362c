package main

import "github.com/manuelminca/sharp-timer-speckit/cmd"

func main() {
	cmd.Execute()
}
