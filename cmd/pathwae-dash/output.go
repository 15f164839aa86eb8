package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pathwae/dashboard"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printBackends(w io.Writer, backends []dashboard.Backend) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTO\tFORCE SSL\tENABLED")
	for _, b := range backends {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%t\n", b.Name, b.To, b.ForceSSL, b.IsEnabled())
	}
	return tw.Flush()
}

func printCertificate(w io.Writer, cert *dashboard.Certificate, now time.Time) {
	fmt.Fprintf(w, "Common name: %s\n", cert.CommonName)
	fmt.Fprintf(w, "Subject:     %s\n", cert.Subject)
	fmt.Fprintf(w, "Issuer:      %s\n", cert.Issuer)
	fmt.Fprintf(w, "Not before:  %s\n", cert.NotBefore)
	fmt.Fprintf(w, "Not after:   %s\n", cert.NotAfter)
	fmt.Fprintf(w, "DNS names:   %s\n", strings.Join(cert.DNSNames, ", "))
	fmt.Fprintf(w, "Valid now:   %t\n", cert.ValidAt(now))
}

func stateText(up bool) string {
	if up {
		return "up"
	}
	return "down"
}

func printSnapshot(w io.Writer, snap *dashboard.Snapshot) error {
	fmt.Fprintf(w, "Taken at: %s\n", snap.TakenAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Version:  %s\n", snap.Version)
	fmt.Fprintf(w, "Memory:   %d bytes\n", snap.MemAlloc)
	fmt.Fprintf(w, "Hits:     %d\n\n", snap.TotalHits())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTO\tSTATE\tHITS\tCERT EXPIRES")
	for _, b := range snap.Backends {
		expires := "-"
		if b.Certificate != nil {
			expires = b.Certificate.NotAfter
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			b.Backend.Name, b.Backend.To, stateText(b.Up), len(b.Hits), expires)
	}
	return tw.Flush()
}
