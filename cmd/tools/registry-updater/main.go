// Command registry-updater maintains the activity registry read by the
// worker manager.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mock-data-forge/pkg/registry"
)

func newRootCmd() *cobra.Command {
	var registryPath string

	root := &cobra.Command{
		Use:           "registry-updater",
		Short:         "Add, update and validate activities in the activity registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&registryPath, "path", "configs/activity-registry.json", "path to the registry file")

	root.AddCommand(
		newAddCmd(&registryPath),
		newUpdateCmd(&registryPath),
		newValidateCmd(&registryPath),
	)
	return root
}

func newAddCmd(path *string) *cobra.Command {
	activity := registry.Activity{
		InputSchema:  map[string]interface{}{},
		OutputSchema: map[string]interface{}{},
		ErrorCodes:   []string{},
		Tags:         []string{},
	}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new activity",
		Example: "  registry-updater add --id generate-mock-data --display-name \"Generate Mock Data\" " +
			"--description \"Generates mock records\" --category data-generation --task-type generate-mock-data",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadOrCreate(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Add(activity); err != nil {
				return err
			}
			if err := registry.Save(reg, *path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added activity: %s\n", activity.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&activity.ID, "id", "", "activity ID")
	f.StringVar(&activity.DisplayName, "display-name", "", "display name")
	f.StringVar(&activity.Description, "description", "", "description")
	f.StringVar(&activity.Category, "category", "", "category")
	f.StringVar(&activity.TaskType, "task-type", "", "Zeebe job type")
	f.StringVar(&activity.Version, "version", "1.0.0", "activity version")
	f.StringVar(&activity.ImplementationStatus, "status", "planned", "implementation status (planned, in-progress, completed, verified)")
	f.StringVar(&activity.Timeout, "timeout", "30s", "job timeout")
	f.IntVar(&activity.Retries, "retries", 0, "job retries")
	for _, name := range []string{"id", "display-name", "description", "category", "task-type"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newUpdateCmd(path *string) *cobra.Command {
	var id, field, value string

	cmd := &cobra.Command{
		Use:     "update",
		Short:   "Update one field of an existing activity",
		Example: "  registry-updater update --id generate-mock-data --field status --value verified",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Update(id, field, value); err != nil {
				return err
			}
			if err := registry.Save(reg, *path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", id, field, value)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&id, "id", "", "activity ID to update")
	f.StringVar(&field, "field", "", "field to update (status, version, displayName, description, category, taskType, timeout, retries)")
	f.StringVar(&value, "value", "", "new value")
	for _, name := range []string{"id", "field", "value"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newValidateCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the registry file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validate(cmd.OutOrStdout(), *path)
		},
	}
}

func validate(out io.Writer, path string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Fprintf(out, "Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
