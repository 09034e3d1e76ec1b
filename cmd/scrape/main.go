// Command scrape refreshes the pre-scraped price dataset and bakes the
// static client data file from it.
package main

import (
	"os"

	"github.com/arbicart/backend/cmd/scrape/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
