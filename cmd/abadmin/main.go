package main

import "github.com/emiliopalmerini/abadmin/internal/cli"

func main() {
	cli.Execute()
}
