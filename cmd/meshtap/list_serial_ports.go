package main

import (
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gridwatch/meshtap/internal/source"
)

var listSerialPortsCmd = &cobra.Command{
	Use:   "list-serial-ports",
	Short: "List the serial ports available on this machine",
	Run: func(cmd *cobra.Command, args []string) {
		listSerialPorts()
	},
}

func init() {
	rootCmd.AddCommand(listSerialPortsCmd)
}

func listSerialPorts() {
	ports, err := source.ListPorts()
	if err != nil {
		log.Println("error listing serial ports:", err)
		os.Exit(1)
	}
	sort.Strings(ports)

	if len(ports) == 0 {
		fmt.Println("No serial ports detected.")
		return
	}
	fmt.Println("Detected:")
	for _, port := range ports {
		fmt.Printf("    --serial %s\n", port)
	}
}
