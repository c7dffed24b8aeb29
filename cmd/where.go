package cmd

import (
	"encoding/json"
	"os"

	"github.com/carekiosk/kiosk/color"
	"github.com/carekiosk/kiosk/style"
	"github.com/carekiosk/kiosk/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

type whereTarget struct {
	flag  string
	short mo.Option[string]
	about string
	path  func() string
	// internal paths are only printed on request
	internal bool
}

var whereTargets = []whereTarget{
	{"config", mo.Some("c"), "Settings file directory", where.Config, false},
	{"logs", mo.Some("l"), "Daily log files", where.Logs, false},
	{"history", mo.Some("s"), "Local watch progress", where.History, false},
	{"captions", mo.None[string](), "Parsed caption tracks", where.Captions, true},
	{"cache", mo.None[string](), "Cache root", where.Cache, true},
	{"temp", mo.None[string](), "mpv IPC sockets", where.Temp, true},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, t := range whereTargets {
		if short, ok := t.short.Get(); ok {
			whereCmd.Flags().BoolP(t.flag, short, false, t.about)
		} else {
			whereCmd.Flags().Bool(t.flag, false, t.about)
		}
		if t.internal {
			lo.Must0(whereCmd.Flags().MarkHidden(t.flag))
		}
	}
	whereCmd.Flags().BoolP("json", "j", false, "Print every path as JSON")

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(whereTargets, func(t whereTarget, _ int) string { return t.flag })...)
	whereCmd.SetOut(os.Stdout)
}

// whereCmd prints the directories the kiosk reads and writes.
var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where the kiosk keeps its config, logs and history",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range whereTargets {
			if lo.Must(cmd.Flags().GetBool(t.flag)) {
				cmd.Println(t.path())
				return
			}
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			paths := lo.SliceToMap(whereTargets, func(t whereTarget) (string, string) { return t.flag, t.path() })
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(paths))
			return
		}

		header := style.New().Bold(true).Foreground(color.HiPurple).Render
		visible := lo.Reject(whereTargets, func(t whereTarget, _ int) bool { return t.internal })
		for i, t := range visible {
			if i > 0 {
				cmd.Println()
			}
			cmd.Printf("%s %s\n", header(t.about), style.Fg(color.Yellow)("--"+t.flag))
			cmd.Println(t.path())
		}
	},
}
