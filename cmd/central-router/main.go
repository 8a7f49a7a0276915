// Command central-router runs the chain's central router daemon (spec
// §2 C1-C5, C8, C9 composed together): it learns participants over ARP,
// owns the ordered chain, and rewrites Ethernet headers to forward IPv4
// frames hop-by-hop. Flag/env layout grounded on the teacher's own
// cmd-less single-binary style generalized with spf13/cobra+pflag, the
// CLI stack gpillon-kubevirt-wol uses for its daemon entrypoints.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/TimeToogo/chain-net/internal/api"
	"github.com/TimeToogo/chain-net/internal/arpengine"
	"github.com/TimeToogo/chain-net/internal/bus"
	"github.com/TimeToogo/chain-net/internal/chainrouter"
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
	var logLevel string

	cmd := &cobra.Command{
		Use:   "central-router <interface> <port>",
		Short: "Learn LAN participants and forward IPv4 frames along the chain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := strconv.ParseUint(args[1], 10, 16)
			if err != nil {
				return fmt.Errorf("central-router: invalid port %q: %w", args[1], err)
			}
			return run(args[0], uint16(port), logLevel)
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ifaceName string, port uint16, logLevel string) error {
	log := logging.New("central-router", logLevel)

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

	// spec §6: initial `on` is true iff FORWARDER_ON is set at all, to any
	// value — presence, not content, so LookupEnv rather than ParseBool.
	_, initialOn := os.LookupEnv("FORWARDER_ON")
	central := state.NewCentral(initialOn)

	reg := prometheus.NewRegistry()
	m := metrics.NewRegistry(reg, "chain_net_central")

	b := bus.New(1024)

	arp, err := arpengine.New(central, iface, b, log.WithName("arpengine"), m)
	if err != nil {
		log.Error(err, "failed to start arp engine")
		_ = conn.Close()
		return err
	}

	router := chainrouter.New(central, iface, log.WithName("chainrouter"), m)

	apiSrv, err := api.New(central, reg, port, log.WithName("api"))
	if err != nil {
		log.Error(err, "failed to build control plane")
		_ = conn.Close()
		return err
	}

	sup := supervisor.New(log, central)

	sup.Go("capture", func(ctx context.Context) error {
		forwarder.Capture(conn, b, log.WithName("capture"), m)
		return nil
	})
	sup.Go("termination-watcher", func(ctx context.Context) error {
		forwarder.WatchTermination(ctx, central, conn, b)
		return nil
	})
	sup.Go("arpengine", func(ctx context.Context) error {
		arp.Run(ctx)
		return nil
	})
	sup.Go("api", func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			_ = apiSrv.Shutdown()
		}()
		return apiSrv.ListenAndServe()
	})
	sup.Go("dispatch", func(ctx context.Context) error {
		return dispatch(b, conn, arp, router, log.WithName("dispatch"))
	})

	code := sup.Wait()
	if code != 0 {
		return fmt.Errorf("central-router: exited with code %d", code)
	}
	return nil
}

// dispatch drains the bus until Terminate, applying the ARP engine to
// ARP replies and the chain router to IPv4 frames, and re-injecting
// whatever either produces (spec §2's forwarder loop). A Terminate
// carrying a non-nil Err means the capture socket hit a fatal error
// (spec §7: "capture fatal" propagates to the supervisor as a non-zero
// exit), as opposed to the expected clean-shutdown Terminate(nil).
func dispatch(b *bus.Bus, conn rawsock.Conn, arp *arpengine.Engine, router *chainrouter.Router, log logr.Logger) error {
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
			switch eth.EtherType() {
			case wire.EthTypeARP:
				arp.HandleReply(eth)
			case wire.EthTypeIPv4:
				ip, err := wire.ParseIPv4(eth.Payload())
				if err != nil {
					log.V(1).Info("dropping malformed ipv4 packet", "error", err)
					continue
				}
				if out := router.Forward(eth, ip); out != nil {
					b.PublishFrameOut(out)
				}
			}
		}
	}
	return nil
}
