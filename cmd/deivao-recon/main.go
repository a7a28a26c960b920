package main

import "github.com/DavidJovino/deivao-recon/internal/cmd"

func main() {
	cmd.Execute()
}
