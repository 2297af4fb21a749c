package main

import "github.com/muselabs/muselog/internal/cli"

func main() {
	cli.Execute()
}
