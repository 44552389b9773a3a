package main

import (
	"fmt"
	"os"
	"strings"

	cli "github.com/spf13/pflag"

	"jarvis/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "s", ipc.DefaultSocketPath, "Control socket of the running jarvis")
	cli.Parse()

	msg := ipc.ControlMessage{Cmd: ipc.CmdPing}
	if text := strings.Join(cli.Args(), " "); text != "" {
		msg = ipc.ControlMessage{Cmd: ipc.CmdRun, Text: text}
	}

	if err := ipc.SendCommand(*socket, msg); err != nil {
		fmt.Println("jarvis not running:", err)
		os.Exit(1)
	}
}
