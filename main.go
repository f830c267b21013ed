package main

import "resistorkit/cmd"

func main() {
	cmd.Execute()
}
