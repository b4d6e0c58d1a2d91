// Command duehost is an interactive console for a pin-control device.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"
	"github.com/google/shlex"

	"dueserv/host/client"
	"dueserv/host/serial"
	"dueserv/protocol"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", protocol.BaudRate, "Baud rate (the firmware uses a fixed rate)")
	timeout = flag.Duration("timeout", client.DefaultTimeout, "Reply timeout per command")
	crlf    = flag.Bool("crlf", false, "Expect CR LF after numeric replies (older firmware)")
	eval    = flag.String("e", "", "Run commands separated by ';' and exit")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	c, err := client.Connect(cfg)
	if err != nil {
		glog.Exitf("connect: %v", err)
	}
	defer c.Close()
	c.SetTimeout(*timeout)
	c.SetNumericLineFeed(*crlf)
	glog.Infof("connected to %s at %d baud", cfg.Device, cfg.Baud)

	shell := newShell(c)

	if *eval != "" {
		if err := runScript(shell, *eval); err != nil {
			glog.Error(err)
			glog.Flush()
			os.Exit(1)
		}
		return
	}

	shell.Println("dueserv " + protocol.Version + " console - type 'help' for commands")
	shell.Run()
}

// newShell builds the console with every command registered
func newShell(c *client.Client) *ishell.Shell {
	shell := ishell.New()
	shell.Set(clientKey, c)
	shell.SetPrompt("due > ")
	for _, cmd := range commands {
		shell.AddCmd(cmd)
	}
	return shell
}

// runScript runs "cmd args; cmd args" one command at a time, stopping at
// the first failure
func runScript(shell *ishell.Shell, script string) error {
	stmts, err := splitScript(script)
	if err != nil {
		return err
	}
	for _, args := range stmts {
		glog.V(1).Infof("eval %q", args)
		if err := shell.Process(args...); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
	}
	return nil
}

// splitScript splits a script on ';' and tokenizes each statement with
// shell quoting rules. Empty statements are dropped.
func splitScript(script string) ([][]string, error) {
	var stmts [][]string
	for _, stmt := range strings.Split(script, ";") {
		args, err := shlex.Split(stmt)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", stmt, err)
		}
		if len(args) > 0 {
			stmts = append(stmts, args)
		}
	}
	return stmts, nil
}
