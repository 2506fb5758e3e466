package main

import "laptev/cmd/laptev/commands"

func main() {
	commands.Execute()
}
