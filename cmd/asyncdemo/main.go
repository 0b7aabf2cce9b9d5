// asyncdemo runs small programs written against the scheduler-agnostic core
// API on the queued reference scheduler.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
