package main

import "github.com/samalsubrat/mk-price-tracker/cmd/mkprice-cli/commands"

func main() {
	commands.Execute()
}
