package main

import "attentionos/cmd/focusctl/commands"

func main() {
	commands.Execute()
}
