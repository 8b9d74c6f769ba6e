package main

import "github.com/vietddude/autodash/internal/cli"

func main() {
	cli.Execute()
}
