package cmd

import (
	"flag"
	"fmt"
	"net"
	"net/url"
	"os"

	"github.com/meshops/meshctl/internal/classify"
	"github.com/meshops/meshctl/internal/netguard"
)

// runCheckURL reports the gateway's verdict for a URL without issuing any
// request or DNS lookup. Handy for debugging why a fetch was rejected.
func runCheckURL(args []string) error {
	flags := flag.NewFlagSet("check-url", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	allowPrivate := flags.Bool("allow-private", false, "evaluate with private/internal targets permitted")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("parsing check-url flags: %w", err)
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: meshctl check-url [flags] <url>")
	}
	rawURL := flags.Arg(0)

	if err := netguard.ValidateURL(rawURL, *allowPrivate); err != nil {
		fmt.Printf("rejected [%s]: %v\n", netguard.CodeOf(err), err)
		os.Exit(1)
		return nil
	}

	fmt.Printf("allowed: %s\n", rawURL)

	// Show the classifier's reasoning for domain hosts even when allowed,
	// so operators can see near-misses.
	if u, err := url.Parse(rawURL); err == nil {
		host := u.Hostname()
		if net.ParseIP(host) == nil {
			if c := classify.Hostname(host); len(c.Warnings) > 0 {
				for _, w := range c.Warnings {
					fmt.Printf("  note: %s\n", w)
				}
			}
		}
	}
	return nil
}
