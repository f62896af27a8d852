package main

import "github.com/autosocial/modbot/cmd"

func main() {
	cmd.Execute()
}
