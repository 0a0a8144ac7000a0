package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// installCommand creates the install command.
func (c *CLI) installCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install all dependencies from the manifest",
		Long: `Install places every dependency of package.json, and their own
dependencies, into node_modules. Versions pinned in package-lock.json are
reused as-is; everything else is resolved and pinned as it is installed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			prog := newProgress(c.Logger)
			report, err := sess.installer.InstallFromLock(ctx)

			out := cmd.OutOrStdout()
			if report != nil && len(report.Installed) > 0 {
				for _, p := range report.Installed {
					printPackage(out, p.Name, p.Version, p.Locked)
				}
			}
			if err != nil {
				if report != nil && len(report.Installed) > 0 {
					printWarning(out, "Stopped after %d packages; the lockfile keeps their versions", len(report.Installed))
				}
				return err
			}

			if len(report.Installed) == 0 {
				printInfo(out, "Nothing to install")
				return nil
			}
			printSuccess(out, "Installed %d packages", len(report.Installed))
			printDetail(out, "Directory: %s", sess.installer.StoreDir())
			prog.done(fmt.Sprintf("Installed %d packages", len(report.Installed)))
			return nil
		},
	}
}
