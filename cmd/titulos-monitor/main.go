package main

import "github.com/titulos-monitor/titulos-monitor/internal/cli"

func main() {
	cli.Execute()
}
