// cmd/tools/registry-updater/main.go
package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"venture-workers/pkg/registry"
)

var statuses = map[string]bool{
	"planned":     true,
	"in-progress": true,
	"implemented": true,
	"verified":    true,
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:          "registry-updater",
		Short:        "Inspect and maintain the activity registry",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&path, "path", "p", "configs/activities.json", "Path to the registry file")

	cmd.AddCommand(listCmd(&path), validateCmd(&path), setStatusCmd(&path))
	return cmd
}

func listCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TASK TYPE\tCATEGORY\tSTATUS\tTIMEOUT\tRETRIES")
			for _, t := range reg.TaskTypes() {
				a, _ := reg.FindByTaskType(t)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", a.TaskType, a.Category, a.ImplementationStatus, a.Timeout, a.Retries)
			}
			return w.Flush()
		},
	}
}

// validateCmd checks the registry and, with --config, that every worker
// configured there is registered.
func validateCmd(path *string) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the registry file",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return err
			}
			for _, a := range reg.Activities {
				if a.DisplayName == "" || a.Category == "" {
					return fmt.Errorf("activity %s needs displayName and category", a.TaskType)
				}
				if a.ImplementationStatus != "" && !statuses[a.ImplementationStatus] {
					return fmt.Errorf("activity %s has unknown status %q", a.TaskType, a.ImplementationStatus)
				}
			}

			if configPath != "" {
				workers, err := configuredWorkers(configPath)
				if err != nil {
					return err
				}
				if missing := reg.Missing(workers); len(missing) > 0 {
					return fmt.Errorf("workers missing from registry: %s", strings.Join(missing, ", "))
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "registry valid: %d activities\n", len(reg.Activities))
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Worker manager config to cross-check")
	return cmd
}

func setStatusCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <taskType> <status>",
		Short: "Set an activity's implementation status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskType, status := args[0], args[1]
			if !statuses[status] {
				return fmt.Errorf("unknown status %q", status)
			}
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return err
			}
			a, ok := reg.FindByTaskType(taskType)
			if !ok {
				return fmt.Errorf("task type %s is not registered", taskType)
			}
			a.ImplementationStatus = status
			if err := reg.Save(*path, time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", taskType, status)
			return nil
		},
	}
}

// configuredWorkers reads only the workers section, so the config's
// connection settings do not have to resolve.
func configuredWorkers(path string) ([]string, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	workers := v.GetStringMap("workers")
	out := make([]string, 0, len(workers))
	for name := range workers {
		out = append(out, name)
	}
	return out, nil
}
