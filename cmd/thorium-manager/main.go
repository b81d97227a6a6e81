package main

import "github.com/kfroeb/thorium-manager/cmd/thorium-manager/cmd"

func main() {
	cmd.Execute()
}
