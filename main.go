package main

import "bankassist/internal/cli"

func main() {
	cli.Execute()
}
