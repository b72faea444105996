// Command proceval analyzes dry fractionation process lines: technical
// performance, capital and operating costs, profitability, sensitivity,
// Monte Carlo risk and environmental impact.
package main

import (
	"os"

	"github.com/fractionworks/proceval/internal/cli"
	"github.com/fractionworks/proceval/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps the outcome to an exit code.
func run() int {
	root := cli.NewRootCmd(version.GetVersion())
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
