// Command node-router runs the per-participant node daemon (spec §2
// C1-C3, C6, C7, C9 composed together): it bounces non-local IPv4 frames
// back to the central router and dumps locally-destined frames at a
// configurable verbosity. CLI layout grounded on the teacher's flag
// conventions, ported to spf13/cobra+pflag.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/TimeToogo/chain-net/internal/bouncerouter"
	"github.com/TimeToogo/chain-net/internal/bus"
	"github.com/TimeToogo/chain-net/internal/dumper"
	"github.com/TimeToogo/chain-net/internal/forwarder"
	"github.com/TimeToogo/chain-net/internal/logging"
	"github.com/TimeToogo/chain-net/internal/metrics"
	"github.com/TimeToogo/chain-net/internal/nic"
	"github.com/TimeToogo/chain-net/internal/rawsock"
	"github.com/TimeToogo/chain-net/internal/state"
	"github.com/TimeToogo/chain-net/internal/supervisor"
	"github.com/TimeToogo/chain-net/internal/wire"
)

func main() {
	var (
		promisc   bool
		dumpLevel int
		logLevel  string
	)

	cmd := &cobra.Command{
		Use:   "node-router <interface>",
		Short: "Bounce non-local IPv4 frames to the central router and dump local traffic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], promisc, dumpLevel, logLevel)
		},
	}
	cmd.Flags().BoolVar(&promisc, "promisc", false, "dump bounced frames too, not just locally-destined ones")
	cmd.Flags().CountVarP(&dumpLevel, "dump", "d", "increase dump verbosity (repeatable)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ifaceName string, promisc bool, dumpLevel int, logLevel string) error {
	log := logging.New("node-router", logLevel)

	iface, err := nic.Snapshot(ifaceName)
	if err != nil {
		log.Error(err, "failed to snapshot interface")
		return err
	}

	conn, err := rawsock.OpenLive(ifaceName)
	if err != nil {
		log.Error(err, "failed to open raw socket")
		return err
	}

	node := state.NewNode(promisc, dumpLevel)

	reg := prometheus.NewRegistry()
	m := metrics.NewRegistry(reg, "chain_net_node")

	b := bus.New(1024)
	d := dumper.New(dumpLevel, os.Stdout, log.WithName("dumper"))
	router := bouncerouter.New(iface, node, d, log.WithName("bouncerouter"), m)

	sup := supervisor.New(log, node)

	sup.Go("capture", func(ctx context.Context) error {
		forwarder.Capture(conn, b, log.WithName("capture"), m)
		return nil
	})
	sup.Go("termination-watcher", func(ctx context.Context) error {
		forwarder.WatchTermination(ctx, node, conn, b)
		return nil
	})
	sup.Go("dispatch", func(ctx context.Context) error {
		return dispatch(b, conn, router, log.WithName("dispatch"))
	})

	code := sup.Wait()
	if code != 0 {
		return fmt.Errorf("node-router: exited with code %d", code)
	}
	return nil
}

// dispatch drains the bus until Terminate, applying the bounce-router
// policy to every IPv4 frame and re-injecting whatever it produces (spec
// §2's node-side forwarder loop). ARP frames are not acted on by the
// node router; it only learns its own addresses once at startup. A
// Terminate carrying a non-nil Err means the capture socket hit a fatal
// error (spec §7), which this daemon surfaces as a non-zero exit.
func dispatch(b *bus.Bus, conn rawsock.Conn, router *bouncerouter.Router, log logr.Logger) error {
	for ev := range b.Events() {
		switch ev.Kind {
		case bus.Terminate:
			return ev.Err

		case bus.FrameOut:
			forwarder.Inject(conn, ev.Frame, log)

		case bus.FrameIn:
			eth, err := forwarder.ParseFrame(ev.Frame)
			if err != nil {
				log.V(1).Info("dropping runt frame", "error", err)
				continue
			}
			if eth.EtherType() != wire.EthTypeIPv4 {
				continue
			}
			ip, err := wire.ParseIPv4(eth.Payload())
			if err != nil {
				log.V(1).Info("dropping malformed ipv4 packet", "error", err)
				continue
			}
			if out := router.Process(eth, ip); out != nil {
				b.PublishFrameOut(out)
			}
		}
	}
	return nil
}
