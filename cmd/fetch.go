package cmd

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/meshops/meshctl/internal/netguard"
)

// headerFlags collects repeated --header k=v flags.
type headerFlags map[string]string

func (h headerFlags) String() string {
	pairs := make([]string, 0, len(h))
	for k, v := range h {
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ",")
}

func (h headerFlags) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("header must be in name=value form: %q", s)
	}
	h[name] = value
	return nil
}

// runFetch issues one guarded request and prints the outcome.
func runFetch(args []string) error {
	flags := flag.NewFlagSet("fetch", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	method := flags.String("method", http.MethodGet, "HTTP method")
	timeout := flags.Duration("timeout", 0, "per-call timeout (clamped to 1s..60s)")
	auditCall := flags.Bool("audit", false, "audit this call's outcome")
	allowPrivate := flags.Bool("allow-private", false, "permit private/internal targets")
	headers := headerFlags{}
	flags.Var(headers, "header", "request header in name=value form (repeatable)")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("parsing fetch flags: %w", err)
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: meshctl fetch [flags] <url>")
	}
	rawURL := flags.Arg(0)

	_, client, cleanup, err := newRuntime()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := signalContext()
	defer cancel()

	opts := []netguard.RequestOption{}
	if *timeout > 0 {
		opts = append(opts, netguard.WithTimeout(*timeout))
	}
	if *auditCall {
		opts = append(opts, netguard.WithAudit())
	}
	if *allowPrivate {
		opts = append(opts, netguard.AllowPrivateIPs())
	}
	if len(headers) > 0 {
		opts = append(opts, netguard.WithHeaders(headers))
	}

	resp, err := client.Do(ctx, strings.ToUpper(*method), rawURL, opts...)
	if err != nil {
		if code := netguard.CodeOf(err); code != "" {
			return fmt.Errorf("[%s] %w", code, err)
		}
		return err
	}

	fmt.Printf("%s %s\n", resp.Status, rawURL)
	fmt.Printf("  body: %d bytes, took %s, correlation %s\n",
		len(resp.Body), resp.Duration.Round(time.Millisecond), resp.CorrelationID)
	if _, err := os.Stdout.Write(resp.Body); err != nil {
		return fmt.Errorf("writing response body: %w", err)
	}
	return nil
}
