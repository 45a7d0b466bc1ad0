// Command catctl manages the category tree from the command line. It talks to
// the inventory API with the same client and checks as the admin screen.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand(newOptions()).Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
