package main

import "github.com/lepinkainen/eikon/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
