package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var peekBytesRaw bool

var peekBytesCmd = &cobra.Command{
	Use:   "peek-bytes",
	Short: "Print the raw bytes flowing at the gateway physical layer",
	Run: func(cmd *cobra.Command, args []string) {
		conn := openSource()
		defer conn.Close()
		peekBytes(conn, peekBytesRaw)
	},
}

func init() {
	peekBytesCmd.Flags().BoolVar(&peekBytesRaw, "raw", false, "print raw binary bytes without hex escaping")
	rootCmd.AddCommand(peekBytesCmd)
}

func peekBytes(r io.Reader, raw bool) {
	buf := make([]byte, 1024)
	lastWas7E := false
	out := os.Stdout

	for {
		n, err := r.Read(buf)
		if n > 0 {
			slice := buf[:n]
			if raw {
				out.Write(slice)
			} else {
				for _, b := range slice {
					sep := byte(' ')
					if lastWas7E && b == 0x08 {
						sep = '\n'
					}
					fmt.Fprintf(out, "%02X%c", b, sep)
					lastWas7E = b == 0x7E
				}
			}
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			log.Println("error reading:", err)
			os.Exit(1)
		}
	}
}
