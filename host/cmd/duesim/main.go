// Command duesim runs the pin-control firmware's dispatcher against a
// simulated board, so host software can be tested without hardware.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"

	"dueserv/core"
	"dueserv/host/serial"
	"dueserv/protocol"
)

var (
	configPath = flag.String("config", "", "YAML config file")
	port       = flag.String("port", "", "Serial device to serve on (default: allocate a pseudo-terminal)")
	debug      = flag.Bool("debug", false, "Log dispatcher debug output (needs -v=1)")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg := defaultConfig()
	if *configPath != "" {
		if err := cfg.load(*configPath); err != nil {
			glog.Exit(err)
		}
	}
	if *port != "" {
		cfg.Port = *port
	}

	board, err := cfg.newBoard()
	if err != nil {
		glog.Exit(err)
	}

	rw, err := openPort(&cfg)
	if err != nil {
		glog.Exit(err)
	}
	tr := protocol.NewStreamTransport(rw)
	defer tr.Close()

	core.SetDebugWriter(func(s string) { glog.V(1).Info(s) })
	core.SetDebugEnabled(*debug)

	d := core.NewDispatcher(tr, board, cfg.mapper())
	d.SetArgTimeout(cfg.ArgTimeout)
	d.SetNumericLineFeed(cfg.CRLF)
	if cfg.IdleSleep > 0 {
		d.SetIdleHook(func() { time.Sleep(cfg.IdleSleep) })
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-tr.Done()
		if ctx.Err() == nil {
			d.DumpCommandRing()
			glog.Exitf("transport stopped: %v", tr.Err())
		}
	}()

	if cfg.StatsInterval > 0 {
		go logStats(ctx, d, cfg.StatsInterval)
	}

	go func() {
		<-ctx.Done()
		// Run only returns between commands; a stalled command never does
		time.Sleep(2 * time.Second)
		glog.Warningf("dispatcher stuck in %s, exiting", d.State())
		d.DumpCommandRing()
		glog.Flush()
		os.Exit(1)
	}()

	glog.Infof("dueserv %s dispatcher running (pins=%d arg_timeout=%v crlf=%v)",
		protocol.Version, board.Size(), cfg.ArgTimeout, cfg.CRLF)
	if err := d.Run(ctx); err != nil && err != context.Canceled {
		glog.Error(err)
	}
	logStatsOnce(d)
}

// openPort opens the configured serial device or allocates a pseudo-terminal
func openPort(cfg *simConfig) (io.ReadWriteCloser, error) {
	if cfg.Port != "" {
		sc := serial.DefaultConfig(cfg.Port)
		sc.Baud = cfg.Baud
		p, err := serial.Open(sc)
		if err != nil {
			return nil, err
		}
		glog.Infof("serving on %s at %d baud", cfg.Port, cfg.Baud)
		return p, nil
	}

	pty, err := serial.OpenPTY()
	if err != nil {
		return nil, err
	}
	glog.Infof("serving on pseudo-terminal %s", pty.Path)
	fmt.Println(pty.Path)
	return pty, nil
}

func logStats(ctx context.Context, d *core.Dispatcher, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logStatsOnce(d)
		}
	}
}

func logStatsOnce(d *core.Dispatcher) {
	s := d.Stats()
	glog.Infof("stats: commands=%d (enq=%d mode=%d dw=%d dr=%d aw=%d ar=%d) ignored=%d pin_errors=%d timeouts=%d",
		s.Commands(), s.Enquiries, s.PinModes, s.DigitalWrites, s.DigitalReads, s.AnalogWrites, s.AnalogReads,
		s.Ignored, s.PinErrors, s.Timeouts)
}
