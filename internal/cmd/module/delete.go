package module

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/cx-cli/internal/cmd/cmdutil"
	"github.com/open-cli-collective/cx-cli/internal/view"
)

type deleteOptions struct {
	commonOptions
	force bool
	stdin io.Reader // For testing; defaults to os.Stdin
}

// NewCmdDelete creates the module delete command.
func NewCmdDelete() *cobra.Command {
	opts := &deleteOptions{
		stdin: os.Stdin,
	}

	cmd := &cobra.Command{
		Use:   "delete <module-id>",
		Short: "Delete a module",
		Long:  `Delete a module by its ID.`,
		Example: `  # Delete a module
  cx module delete 42

  # Delete without confirmation
  cx module delete 42 --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid module id %q", args[0])
			}

			pages, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer pages.Close()
			return runDelete(cmdutil.Context(cmd), id, opts, pages)
		},
	}

	opts.addRemoteFlag(cmd)
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func runDelete(ctx context.Context, id int64, opts *deleteOptions, pages cmdutil.Pages) error {
	renderer, err := opts.renderer()
	if err != nil {
		return err
	}

	if !opts.force {
		fmt.Fprintf(opts.out, "About to delete module %d\n", id)
		fmt.Fprint(opts.out, "Are you sure? [y/N]: ")

		scanner := bufio.NewScanner(opts.stdin)
		var confirm string
		if scanner.Scan() {
			confirm = scanner.Text()
		}

		if confirm != "y" && confirm != "Y" {
			fmt.Fprintln(opts.out, "Deletion cancelled.")
			return nil
		}
	}

	if err := pages.DeleteModule(ctx, id); err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}

	if renderer.Format() == view.FormatJSON {
		return renderer.RenderJSON(map[string]string{
			"status":    "deleted",
			"module_id": strconv.FormatInt(id, 10),
		})
	}

	renderer.Success(fmt.Sprintf("Deleted module %d", id))

	return nil
}
