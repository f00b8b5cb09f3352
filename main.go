package main

import "github.com/guimove/tablefit/cmd"

func main() {
	cmd.Execute()
}
