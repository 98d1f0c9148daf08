package main

import "milp-runner/internal/cli"

func main() {
	cli.Execute()
}
