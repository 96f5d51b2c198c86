package main

import (
	"github.com/pawdue/pawdue/cmd/pawdue/cmd"
)

func main() {
	cmd.Execute()
}
