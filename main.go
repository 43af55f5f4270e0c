package main

import "github.com/stacked-drg/porep-verifier/cmd"

func main() {
	cmd.Execute()
}
