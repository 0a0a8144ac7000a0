package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pakt/pkg/errors"
)

// addCommand creates the add command.
func (c *CLI) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name[@constraint]>...",
		Short: "Add packages to the manifest and lockfile",
		Long: `Add resolves each package against the registry and records it as a
top-level dependency. The requested constraint (default "latest") is written
to package.json and the resolved version to package-lock.json. Nothing is
downloaded; run "pakt install" afterwards.`,
		Example: `  pakt add express
  pakt add lodash@^4.17.0 @types/node@~20.1.0`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "no packages given\nUsage: %s", cmd.UseLine())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			report, err := sess.installer.AddPackages(ctx, args)
			if report != nil {
				out := cmd.OutOrStdout()
				for _, r := range report.Results {
					if r.Err != nil {
						printError(out, "%s: %s", r.Token, errors.UserMessage(r.Err))
						continue
					}
					printSuccess(out, "Added %s", StyleHighlight.Render(r.Name)+"@"+StyleValue.Render(r.Version))
					printDetail(out, "constraint %s", r.Constraint)
				}
			}
			if err != nil {
				return err
			}
			if failed := report.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d of %d packages could not be added", len(failed), len(report.Results))
			}
			return nil
		},
	}
}
