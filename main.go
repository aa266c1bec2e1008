package main

import "github.com/decapod-atm/ssp-host/cmd"

func main() {
	cmd.Execute()
}
