package main

import "github.com/bmohb/iiroc-scrape/internal/cli"

func main() {
	cli.Execute()
}
