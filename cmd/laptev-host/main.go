package main

import "laptev/cmd/laptev-host/commands"

func main() {
	commands.Execute()
}
