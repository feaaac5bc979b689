package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gridwatch/meshtap/internal/link"
)

var peekFramesCmd = &cobra.Command{
	Use:   "peek-frames",
	Short: "Print the assembled frames at the gateway link layer",
	Run: func(cmd *cobra.Command, args []string) {
		conn := openSource()
		defer conn.Close()
		peekFrames(conn)
	},
}

func init() {
	rootCmd.AddCommand(peekFramesCmd)
}

type printFrameSink struct{}

func (printFrameSink) Frame(f link.Frame) {
	fmt.Printf("%+v\n", f)
}

func peekFrames(r io.Reader) {
	rx := link.NewReceiver(printFrameSink{})
	buf := make([]byte, 1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			rx.Write(buf[:n])
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
