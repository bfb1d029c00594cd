// Command crushtxt converts ceph crush dumps into crush map text.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/crushtxt/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil && !cli.IsReported(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
