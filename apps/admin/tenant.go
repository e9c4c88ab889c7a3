package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/tenant"
)

func (cli *commandLine) tenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "tenant",
		Short:             "Manage the tenant catalog",
		PersistentPreRunE: cli.connect,
	}
	cmd.AddCommand(cli.tenantAddCmd(), cli.tenantGetCmd(), cli.tenantListCmd(), cli.tenantRemoveCmd())
	return cmd
}

func (cli *commandLine) tenantAddCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "add -f FILE",
		Short: `Add a tenant from a JSON file ("-" reads stdin)`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readTenant(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			created, err := cli.tenantSvc.Create(cmd.Context(), t)
			if err != nil {
				return cli.describe(err)
			}
			return printJSON(cmd.OutOrStdout(), created)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "tenant JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (cli *commandLine) tenantGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get SUBDOMAIN",
		Short: "Show a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := cli.tenantSvc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), t)
		},
	}
}

func (cli *commandLine) tenantListCmd() *cobra.Command {
	var ordering string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tenants, err := cli.tenantSvc.List(cmd.Context(), core.ParseOrderings(ordering))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SUBDOMAIN\tNAME\tPLAN")
			for _, t := range tenants {
				fmt.Fprintf(w, "%s\t%s\t%s\n", t.Subdomain, t.Name, t.Plan.Name)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&ordering, "ordering", "", `eg. "-created_at,name" (name, subdomain, created_at)`)
	return cmd
}

func (cli *commandLine) tenantRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove SUBDOMAIN",
		Short: "Remove a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.tenantSvc.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	}
}

// describe spells out validation errors field by field.
func (cli *commandLine) describe(err error) error {
	switch origErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		return fmt.Errorf("invalid tenant: %v", core.TranslateErrors(origErr, cli.translator))
	case *core.ValidationError:
		return fmt.Errorf("invalid tenant: %v", origErr)
	}
	return err
}

func readTenant(file string, stdin io.Reader) (tenant.Tenant, error) {
	var r io.Reader = stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return tenant.Tenant{}, errors.Wrap(err, "opening tenant file")
		}
		defer f.Close()
		r = f
	}

	var t tenant.Tenant
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return tenant.Tenant{}, errors.Wrap(err, "decoding tenant")
	}
	return t, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
