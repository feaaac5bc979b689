package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/m-lab/go/flagx"
	"github.com/spf13/cobra"

	"github.com/gridwatch/meshtap/internal/config"
	"github.com/gridwatch/meshtap/internal/source"
)

var goFlags = flag.NewFlagSet("meshtap", flag.ContinueOnError)

var (
	flagSerial = goFlags.String("serial", "", "Name of the serial port to read the gateway from (see list-serial-ports)")
	flagTCP    = goFlags.String("tcp", "", "Hostname providing serial-over-TCP service")
	flagPort   = goFlags.Uint("port", uint(config.DefaultTCPPort), "Port to connect to, if --tcp is specified")
)

var rootCmd = &cobra.Command{
	Use:   "meshtap",
	Short: "Observe PV-optimizer mesh gateway traffic without participating in it",
}

func init() {
	// Environment-variable flag population happens before cobra parses
	// argv, mirroring the teacher's main.go use of flagx.ArgsFromEnv on the
	// stdlib flag.CommandLine.
	flagx.ArgsFromEnv(goFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(goFlags)
	rootCmd.PersistentFlags().SortFlags = false
}

// sourceConfig builds a config.SourceConfig from the --serial/--tcp/--port
// flags shared by every subcommand that reads from a gateway.
func sourceConfig() (config.SourceConfig, error) {
	switch {
	case *flagSerial != "" && *flagTCP != "":
		return config.SourceConfig{}, errAmbiguousSource
	case *flagSerial != "":
		return config.SourceConfig{Serial: &config.SerialSourceConfig{Name: *flagSerial}}, nil
	case *flagTCP != "":
		return config.SourceConfig{TCP: &config.TCPConnectionConfig{
			Hostname: *flagTCP,
			Port:     uint16(*flagPort),
			Mode:     config.ConnectionModeReadOnly,
		}}, nil
	default:
		return config.SourceConfig{}, errNoSource
	}
}

var (
	errAmbiguousSource = errors.New("exactly one of --serial or --tcp must be given")
	errNoSource        = errors.New("a source must be specified with --serial or --tcp")
)

// openSource resolves the shared source flags and opens the connection,
// exiting with status 2 on failure, per spec.md §6.
func openSource() source.Connection {
	cfg, err := sourceConfig()
	if err != nil {
		log.Println("error opening source:", err)
		os.Exit(2)
	}
	conn, err := cfg.Open()
	if err != nil {
		log.Println("error opening source:", err)
		os.Exit(2)
	}
	return conn
}
