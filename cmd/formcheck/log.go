package main

import (
	"fmt"
	"os"
)

/*
Logf writes the formatted message to STDERR when the verbose flag
is set, so that progress never mixes with report output on STDOUT.
*/
func (c *rootCmdConfig) Logf(format string, a ...interface{}) {
	if !c.verbose {
		return
	}
	fmt.Fprintf(os.Stderr, format, a...)
}
