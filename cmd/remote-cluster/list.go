package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dhis2-sre/im-remote-cluster/pkg/client"
	"github.com/dhis2-sre/im-remote-cluster/pkg/console"
	"github.com/spf13/cobra"
)

func newListCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List remote clusters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alerter := writerAlerter{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()}
			editor := console.NewEditor(root.logger(cmd.ErrOrStderr()), root.backend(), alerter, nil)

			clusters, err := editor.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSERVICES")
			for _, cluster := range clusters {
				fmt.Fprintf(w, "%s\t%s\n", cluster.Name, strings.Join(cluster.ServiceNames(), ","))
			}
			return w.Flush()
		},
	}
}

func newGetCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Show a remote cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cluster, err := root.backend().FindRemoteCluster(cmd.Context(), args[0])
			if err != nil {
				return missing(err, args[0])
			}
			return printYAML(cmd.OutOrStdout(), toOutput(cluster))
		},
	}
}

func newDeleteCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a remote cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := root.backend().DeleteRemoteCluster(cmd.Context(), args[0])
			if err != nil {
				return missing(err, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

// missing replaces a not found error by a hint to list the remote clusters.
func missing(err error, name string) error {
	if client.IsNotFound(err) {
		return fmt.Errorf("remote cluster %q doesn't exist, run list to see the existing ones", name)
	}
	return err
}

func newCatalogCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the views and view services remote clusters are made of",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "views",
		Short: "List views and the services they require",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := root.backend().ListViews(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSERVICES\tDESCRIPTION")
			for _, view := range views {
				fmt.Fprintf(w, "%s\t%s\t%s\n", view.Name, strings.Join(view.Services, ","), view.Description)
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "services",
		Short: "List view services and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := root.backend().ListServices(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SERVICE\tPARAMETER\tREQUIRED\tMASKED")
			for _, service := range services {
				for _, parameter := range service.Parameters {
					fmt.Fprintf(w, "%s\t%s\t%t\t%t\n", service.CommonName, parameter.Name, parameter.Required, parameter.Masked)
				}
			}
			return w.Flush()
		},
	})

	return cmd
}
