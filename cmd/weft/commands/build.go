package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/weft/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build all declared units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			root, err := cmd.Flags().GetString("root")
			if err != nil {
				return err
			}
			jobs, err := cmd.Flags().GetInt("jobs")
			if err != nil {
				return err
			}
			translate, err := cmd.Flags().GetBool("translate")
			if err != nil {
				return err
			}

			return c.app.Build(cmd.Context(), app.BuildOptions{
				Root:       root,
				ConfigPath: configPath,
				Jobs:       jobs,
				Translate:  translate,
			})
		},
	}

	cmd.Flags().IntP("jobs", "j", 0, "Number of parallel tasks (0 = one per CPU)")
	cmd.Flags().Bool("translate", false, "Regenerate translation catalogs from the sources")

	return cmd
}
