package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dhis2-sre/im-remote-cluster/pkg/client"
	"github.com/dhis2-sre/im-remote-cluster/pkg/console"
	"github.com/spf13/cobra"
)

type editFlags struct {
	views  []string
	set    []string
	dryRun bool
}

func addEditFlags(cmd *cobra.Command, flags *editFlags) {
	cmd.Flags().StringArrayVar(&flags.views, "view", nil, "Toggle the selection of a view (repeatable)")
	cmd.Flags().StringArrayVar(&flags.set, "set", nil, "Set a parameter as SERVICE/PARAMETER=VALUE where SERVICE is the common name (repeatable)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print the remote cluster instead of saving it")
}

func newCreateCmd(root *rootFlags) *cobra.Command {
	flags := &editFlags{}

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a remote cluster",
		Long: `Create a remote cluster from the services required by the selected views.

Services required by more than one view are configured once. Versions of a
service share their parameters, address them using the common name.`,
		Example: `  remote-cluster create cluster1 --view FILES --set HDFS/webhdfs.url=webhdfs://namenode:50070
  remote-cluster create cluster1 --view HIVE --view TEZ --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, root, flags, "", args[0])
		},
	}
	addEditFlags(cmd, flags)

	return cmd
}

func newEditCmd(root *rootFlags) *cobra.Command {
	flags := &editFlags{}

	cmd := &cobra.Command{
		Use:   "edit NAME",
		Short: "Edit a remote cluster",
		Long: `Edit an existing remote cluster. Views are selected if the remote cluster
holds every service they require, --view toggles them.`,
		Example: `  remote-cluster edit cluster1 --set YARN/yarn.resourcemanager.url=http://rm:8088
  remote-cluster edit cluster1 --view CAPACITY-SCHEDULER --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, root, flags, args[0], args[0])
		},
	}
	addEditFlags(cmd, flags)

	return cmd
}

type assignment struct {
	commonName string
	parameter  string
	value      string
}

func parseAssignments(values []string) ([]assignment, error) {
	assignments := make([]assignment, 0, len(values))
	for _, value := range values {
		key, v, ok := strings.Cut(value, "=")
		if !ok {
			return nil, fmt.Errorf("invalid assignment %q, want SERVICE/PARAMETER=VALUE", value)
		}
		commonName, parameter, ok := strings.Cut(key, "/")
		if !ok || commonName == "" || parameter == "" {
			return nil, fmt.Errorf("invalid assignment %q, want SERVICE/PARAMETER=VALUE", value)
		}
		assignments = append(assignments, assignment{commonName: commonName, parameter: parameter, value: v})
	}
	return assignments, nil
}

// runEdit loads the remote cluster named load, or a blank form if load is empty, applies the
// flags and saves the result unless it's a dry run.
func runEdit(cmd *cobra.Command, root *rootFlags, flags *editFlags, load, name string) error {
	assignments, err := parseAssignments(flags.set)
	if err != nil {
		return err
	}

	choice := console.ChoiceSave
	if flags.dryRun {
		choice = console.ChoiceDiscard
	}
	prompter := console.PrompterFunc(func(context.Context) (console.Choice, error) {
		return choice, nil
	})

	ctx := cmd.Context()
	alerter := writerAlerter{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()}
	editor := console.NewEditor(root.logger(cmd.ErrOrStderr()), root.backend(), alerter, prompter)

	vm, err := editor.Load(ctx, load)
	if client.IsNotFound(err) {
		return fmt.Errorf("remote cluster %q doesn't exist, run create to add it", load)
	}
	if err != nil {
		return err
	}

	if vm.Mode == console.ModeEdit {
		_, err = editor.ToggleEdit()
	} else {
		_, err = editor.SetName(name)
	}
	if err != nil {
		return err
	}

	for _, view := range flags.views {
		if _, err := editor.ToggleView(view); err != nil {
			return err
		}
	}
	for _, a := range assignments {
		if _, err := editor.SetParameter(a.commonName, a.parameter, a.value); err != nil {
			return err
		}
	}

	vm = editor.Model()
	if flags.dryRun {
		if err := vm.Form.Validate(vm.Name); err != nil {
			return err
		}
		cluster, err := console.ToWireInstance(vm.Name, vm.Form)
		if err != nil {
			return err
		}
		if err := printYAML(cmd.OutOrStdout(), toOutput(cluster)); err != nil {
			return err
		}
	}

	if !vm.Dirty {
		fmt.Fprintf(cmd.OutOrStdout(), "Nothing to change on %s\n", vm.Name)
		return nil
	}

	_, err = editor.CanLeave(ctx)
	return err
}
