package main

import "github.com/mavedirra/nmb/cmd"

func main() {
	cmd.Execute()
}
