// Command insignia manages the graph behind the document signing service.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/insignia/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
