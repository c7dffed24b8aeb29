package cmd

import (
	"encoding/json"
	"os"
	"runtime"
	"strings"
	"text/template"

	"github.com/carekiosk/kiosk/color"
	"github.com/carekiosk/kiosk/config"
	"github.com/carekiosk/kiosk/constant"
	"github.com/carekiosk/kiosk/key"
	"github.com/carekiosk/kiosk/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Print only the version")
	versionCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
}

// buildInfo is what support staff ask for when a kiosk misbehaves.
type buildInfo struct {
	App      string `json:"app"`
	Version  string `json:"version"`
	Revision string `json:"revision"`
	BuiltAt  string `json:"builtAt"`
	BuiltBy  string `json:"builtBy"`
	Platform string `json:"platform"`
	Backend  string `json:"backend"`
	Captions bool   `json:"captions"`
	Ratings  string `json:"ratings"`
	Config   string `json:"config"`
}

func currentBuild() buildInfo {
	ratings := "disabled"
	if viper.GetBool(key.RatingsEnable) {
		ratings = viper.GetString(key.RatingsEndpoint)
	}
	return buildInfo{
		App:      constant.Kiosk,
		Version:  constant.Version,
		Revision: constant.Revision,
		BuiltAt:  strings.TrimSpace(constant.BuiltAt),
		BuiltBy:  constant.BuiltBy,
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		Backend:  viper.GetString(key.PlayerBackend),
		Captions: viper.GetBool(key.CaptionsEnable),
		Ratings:  ratings,
		Config:   config.File(),
	}
}

var versionTemplate = template.Must(template.New("version").Funcs(template.FuncMap{
	"faint":   style.Faint,
	"bold":    style.Bold,
	"magenta": style.Fg(color.Purple),
}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }}

  {{ faint "Version " }}  {{ bold .Version }}
  {{ faint "Revision" }}  {{ bold .Revision }}
  {{ faint "Built   " }}  {{ bold .BuiltAt }} by {{ bold .BuiltBy }}
  {{ faint "Platform" }}  {{ bold .Platform }}
  {{ faint "Backend " }}  {{ bold .Backend }}
  {{ faint "Captions" }}  {{ bold .Captions }}
  {{ faint "Ratings " }}  {{ bold .Ratings }}
  {{ faint "Config  " }}  {{ .Config }}
`))

// versionCmd prints the version, build metadata and the effective playback settings.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		info := currentBuild()
		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(info))
			return
		}
		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), info))
	},
}
