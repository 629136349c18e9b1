package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/perola/clusterd/internal/clusterctl"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "create":
		fs := newFlagSet("create")
		file := fs.String("f", "", "Path to cluster definition YAML file (required)")
		fs.Parse(os.Args[2:])
		if *file == "" {
			fmt.Fprintln(os.Stderr, "Error: -f flag is required")
			fs.Usage()
			os.Exit(1)
		}
		run(clusterctl.Create(newClient(fs), *file))

	case "list":
		fs := newFlagSet("list")
		platform := fs.String("platform", "", "Filter by platform type")
		phase := fs.String("phase", "", "Filter by status phase")
		fs.Parse(os.Args[2:])
		run(clusterctl.List(newClient(fs), *platform, *phase))

	case "get":
		fs := newFlagSet("get")
		fs.Parse(os.Args[2:])
		run(clusterctl.Get(newClient(fs), requireID(fs, "get")))

	case "status":
		fs := newFlagSet("status")
		fs.Parse(os.Args[2:])
		run(clusterctl.Status(newClient(fs), requireID(fs, "status")))

	case "update":
		fs := newFlagSet("update")
		file := fs.String("f", "", "Path to cluster definition YAML file (required)")
		expect := fs.Int64("expect", 0, "Fail unless the cluster is at this generation")
		fs.Parse(os.Args[2:])
		if *file == "" {
			fmt.Fprintln(os.Stderr, "Error: -f flag is required")
			fs.Usage()
			os.Exit(1)
		}
		run(clusterctl.Update(newClient(fs), requireID(fs, "update"), *file, *expect))

	case "report":
		fs := newFlagSet("report")
		controller := fs.String("controller", "", "Controller name (required)")
		generation := fs.Int64("generation", 0, "Observed generation")
		ready := fs.Bool("ready", false, "Report the cluster as available")
		errMsg := fs.String("error", "", "Reconciliation failure message")
		fs.Parse(os.Args[2:])
		if *controller == "" {
			fmt.Fprintln(os.Stderr, "Error: -controller flag is required")
			fs.Usage()
			os.Exit(1)
		}
		run(clusterctl.Report(newClient(fs), requireID(fs, "report"),
			*controller, *generation, *ready, *errMsg))

	case "wait":
		fs := newFlagSet("wait")
		phase := fs.String("for-phase", "Ready", "Phase to wait for")
		timeout := fs.Duration("timeout", 10*time.Minute, "Give up after this long")
		interval := fs.Duration("interval", 2*time.Second, "Poll interval")
		fs.Parse(os.Args[2:])
		run(clusterctl.WaitForPhase(newClient(fs), requireID(fs, "wait"),
			*phase, *timeout, *interval))

	case "watch":
		fs := newFlagSet("watch")
		fs.Parse(os.Args[2:])
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		run(clusterctl.Watch(ctx, newClient(fs), fs.Arg(0)))

	case "delete":
		fs := newFlagSet("delete")
		force := fs.Bool("force", false, "Delete even while reconciling")
		fs.Parse(os.Args[2:])
		run(clusterctl.Delete(newClient(fs), requireID(fs, "delete"), *force))

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// newFlagSet creates a flag set carrying the flags every command shares.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.String("api", envOr("CLUSTERCTL_API", "http://localhost:8090"), "Cluster API base URL")
	fs.String("user", os.Getenv("CLUSTERCTL_USER"), "Identity sent as X-User-Email")
	return fs
}

func newClient(fs *flag.FlagSet) *clusterctl.Client {
	return clusterctl.NewClient(fs.Lookup("api").Value.String(), fs.Lookup("user").Value.String())
}

func requireID(fs *flag.FlagSet, cmd string) string {
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: clusterctl %s [flags] <cluster-id>\n", cmd)
		os.Exit(1)
	}
	return fs.Arg(0)
}

func run(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  clusterctl create -f <cluster.yaml>
  clusterctl list [-platform TYPE] [-phase PHASE]
  clusterctl get <cluster-id>
  clusterctl status <cluster-id>
  clusterctl update -f <cluster.yaml> [-expect N] <cluster-id>
  clusterctl report -controller NAME [-generation N] [-ready] [-error MSG] <cluster-id>
  clusterctl wait [-for-phase Ready] [-timeout 10m] <cluster-id>
  clusterctl watch [cluster-id]
  clusterctl delete [-force] <cluster-id>

Commands:
  create    Register a cluster from a YAML definition
  list      List clusters with optional platform/phase filters
  get       Print one cluster as JSON
  status    Print the aggregated status and controller reports
  update    Replace a cluster's spec from a YAML definition
  report    Push a controller status report (controller identity required)
  wait      Block until the cluster reaches a phase
  watch     Stream cluster events over WebSocket
  delete    Request cluster deletion

Flags shared by every command:
  -api string   Cluster API base URL (default: $CLUSTERCTL_API or http://localhost:8090)
  -user string  Identity sent as X-User-Email (default: $CLUSTERCTL_USER)`)
}
