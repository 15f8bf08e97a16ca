package main

import "github.com/gaurav-prasanna/flareconv/cmd"

func main() {
	cmd.Execute()
}
