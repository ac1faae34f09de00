// Package main provides the hookr command.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/hookr/hookr/cmd"
)

func main() {
	cmd.Execute()
	atexit.Exit(0)
}
