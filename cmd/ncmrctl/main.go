// ncmrctl manages NCMRs from the terminal using the same configuration as
// the server.
//
// Usage:
//
//	ncmrctl list --search bracket --status open
//	ncmrctl summary -o json
//	ncmrctl create --part-number BR-200 --part-name Bracket --quantity 5 --defect "Crack"
//	ncmrctl status 1718000000000 in-progress
//	ncmrctl delete 1718000000000
package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
