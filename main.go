package main

import "kanban-backend/cmd/cli"

func main() {
	cli.Execute()
}
