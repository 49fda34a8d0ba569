package main

import "specs-archiver/internal/cli"

func main() {
	cli.Execute()
}
