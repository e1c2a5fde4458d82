// Command leaftool prepares the offline artifacts of the leaf classifier
// and runs single-image classifications from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
)

func leaftool() *commander.Command {
	return &commander.Command{
		UsageLine: "leaftool <command> [options]",
		Short:     "offline tools for the durian leaf classifier",
		Subcommands: []*commander.Command{
			cmdSegment(),
			cmdExtract(),
			cmdFitScaler(),
			cmdClassify(),
		},
		Flag: *flag.NewFlagSet("leaftool", flag.ExitOnError),
	}
}

func main() {
	if err := leaftool().Dispatch(os.Args[1:]); err != nil {
		fmt.Printf("**err**: %v\n", err)
		os.Exit(1)
	}
}
