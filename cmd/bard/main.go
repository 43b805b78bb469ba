package main

import "github.com/tessro/bard/internal/cli"

func main() {
	cli.Execute()
}
