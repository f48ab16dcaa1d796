package main

import "github.com/literaryvoice/literary-voice/internal/cli"

func main() {
	cli.Execute()
}
