package main

import "github.com/velora/commerce/cmd"

func main() {
	cmd.Start()
}
