// Command meshtap peeks at, or fully decodes, the traffic a PV-optimizer
// mesh gateway exchanges with its controller, over either a serial port or
// a TCP relay.
package main

import (
	"log"
	"os"
)

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
