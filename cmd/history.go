package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/carekiosk/kiosk/color"
	"github.com/carekiosk/kiosk/history"
	"github.com/carekiosk/kiosk/icon"
	"github.com/carekiosk/kiosk/style"
	"github.com/carekiosk/kiosk/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	historyCmd.SetOut(os.Stdout)
}

// historyCmd lists the locally remembered progress, most recent first.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the videos watched on this kiosk",
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := history.List()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(entries))
			return
		}

		if len(entries) == 0 {
			cmd.Println(style.Faint("No history yet"))
			return
		}

		cmd.Println(style.Faint(util.Quantify(len(entries), "video", "videos")))
		for _, e := range entries {
			mark := style.Faint(fmt.Sprintf("%3d%%", e.Progress))
			if e.Watched {
				mark = style.Fg(color.Green)(icon.Get(icon.Watched) + " ") + mark
			}
			cmd.Printf("%s  %s %s\n",
				mark,
				style.Bold(e.Name),
				style.Faint(fmt.Sprintf("#%d, %s", e.VideoID, e.UpdatedAt.Format("2006-01-02 15:04"))),
			)
		}
	},
}

func init() {
	historyCmd.AddCommand(historyRemoveCmd)
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove [video id]",
	Short: "Forget the progress of one video",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			handleErr(fmt.Errorf("invalid video id %q", args[0]))
		}

		entry, err := history.Lookup(id)
		handleErr(err)

		e, ok := entry.Get()
		if !ok {
			handleErr(fmt.Errorf("video %d is not in the history", id))
		}

		handleErr(history.Remove(e))
		fmt.Printf("%s removed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), e.Name)
	},
}
