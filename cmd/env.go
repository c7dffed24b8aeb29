package cmd

import (
	"os"

	"github.com/carekiosk/kiosk/color"
	"github.com/carekiosk/kiosk/config"
	"github.com/carekiosk/kiosk/style"
	"github.com/carekiosk/kiosk/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Only variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Only variables that are unset")
	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

// envCmd lists the environment variables that override settings. Provisioning scripts use them instead of a config file.
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables that override settings",
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))

		// variable name -> setting it overrides
		settings := lo.SliceToMap(config.EnvExposed, func(k string) (string, string) {
			field := config.Default[k]
			return field.Env(), k
		})
		settings[where.EnvConfigPath] = "config directory"

		envs := lo.Keys(settings)
		slices.Sort(envs)

		for _, env := range envs {
			value, present := os.LookupEnv(env)
			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			shown := style.Faint("unset")
			if present {
				shown = style.Fg(color.Green)(value)
			}
			cmd.Printf("%s=%s %s\n",
				style.New().Bold(true).Foreground(color.Purple).Render(env),
				shown,
				style.Faint("# "+settings[env]),
			)
		}
	},
}
