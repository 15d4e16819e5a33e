package main

import "github.com/mvp-joe/autofix/internal/cli"

func main() {
	cli.Execute()
}
