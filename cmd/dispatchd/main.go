package main

import (
	"fmt"
	"os"

	"github.com/joeydtaylor/steeze-dispatch/pkg/endpoints/messages"
	"github.com/joeydtaylor/steeze-dispatch/pkg/endpoints/stats"
)

func main() {
	messages.Register()
	stats.Register()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dispatchd:", err)
		os.Exit(1)
	}
}
