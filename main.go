package main

import "github.com/mj1618/appgate/cmd"

func main() {
	cmd.Execute()
}
