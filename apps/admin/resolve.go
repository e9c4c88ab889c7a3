package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trezcool/masomo-portal/core/tenant"
)

func (cli *commandLine) resolveCmd() *cobra.Command {
	var mode, apiURL string

	cmd := &cobra.Command{
		Use:   "resolve HOST",
		Short: "Show how the portal routes a host (subdomain, mode, API base URL)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hostname := hostnameOf(args[0])
			env := tenant.ParseEnv(mode)

			sub := tenant.Subdomain(hostname)
			if sub == "" {
				sub = "-"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "hostname: %s\n", hostname)
			fmt.Fprintf(out, "subdomain: %s\n", sub)
			fmt.Fprintf(out, "tenant domain: %t\n", tenant.IsTenantDomain(hostname))
			fmt.Fprintf(out, "mode: %s\n", tenant.ModeOf(hostname, env))
			fmt.Fprintf(out, "api base url: %s\n", tenant.APIBaseURL(apiURL, hostname, env))
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "env", cli.conf.API.Mode, "development | production")
	cmd.Flags().StringVar(&apiURL, "api-url", cli.conf.API.URL, "REST backend base URL")
	return cmd
}

// hostnameOf accepts a bare host (with or without port) or a full URL.
func hostnameOf(s string) string {
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil {
			s = u.Host
		}
	}
	return tenant.HostnameFromHost(s)
}
