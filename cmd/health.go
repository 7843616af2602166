package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/meshops/meshctl/internal/netguard"
)

// ErrUnhealthy reports a completed probe against an unavailable endpoint.
// The verdict is already printed when it is returned; main maps it to exit
// status 1 without a second error message. Returning instead of exiting here
// lets the deferred runtime cleanup close the audit sink first.
var ErrUnhealthy = errors.New("endpoint unhealthy")

// runHealth probes an endpoint and reports availability. An unhealthy
// endpoint yields ErrUnhealthy; the probe itself never errors out.
func runHealth(args []string) error {
	flags := flag.NewFlagSet("health", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	timeout := flags.Duration("timeout", 10*time.Second, "probe timeout (clamped to 1s..60s)")
	allowPrivate := flags.Bool("allow-private", false, "permit private/internal targets")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("parsing health flags: %w", err)
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: meshctl health [flags] <url>")
	}
	rawURL := flags.Arg(0)

	_, client, cleanup, err := newRuntime()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := signalContext()
	defer cancel()

	opts := []netguard.RequestOption{netguard.WithTimeout(*timeout)}
	if *allowPrivate {
		opts = append(opts, netguard.AllowPrivateIPs())
	}

	status := client.HealthCheck(ctx, rawURL, opts...)
	if status.Healthy {
		fmt.Printf("healthy: %s (status %d, %s)\n",
			rawURL, status.Status, status.ResponseTime.Round(time.Millisecond))
		return nil
	}

	if status.Err != "" {
		fmt.Printf("unhealthy: %s (%s, %s)\n",
			rawURL, status.Err, status.ResponseTime.Round(time.Millisecond))
	} else {
		fmt.Printf("unhealthy: %s (status %d, %s)\n",
			rawURL, status.Status, status.ResponseTime.Round(time.Millisecond))
	}
	return ErrUnhealthy
}
