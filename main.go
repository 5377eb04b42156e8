package main

import "wakili-cli/cmd"

func main() {
	cmd.Execute()
}
