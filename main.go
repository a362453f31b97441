package main

import "github.com/tristendillon/amdbutler/cmd"

func main() {
	cmd.Execute()
}
