package main

import "github.com/quaid/total-recall/cmd/total-recall/commands"

func main() {
	commands.Execute()
}
