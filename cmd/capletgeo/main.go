// Command capletgeo builds basis functions for capacitance extraction from
// a Manhattan layout given as a .geo file or a layout script.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := makeCapletGeoCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "capletgeo:", err)
		os.Exit(1)
	}
}
