package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/carekiosk/kiosk/color"
	"github.com/carekiosk/kiosk/icon"
	"github.com/carekiosk/kiosk/style"
	"github.com/carekiosk/kiosk/video"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(descriptorCmd)
	descriptorCmd.AddCommand(descriptorSchemaCmd)
	descriptorCmd.AddCommand(descriptorCheckCmd)
}

var descriptorCmd = &cobra.Command{
	Use:   "descriptor",
	Short: "Work with the JSON video descriptors accepted by play --file",
}

// descriptorSchema is the JSON schema of a video descriptor.
func descriptorSchema() *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.DoNotReference = true
	return reflector.Reflect(&video.Descriptor{})
}

var descriptorSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of a video descriptor",
	Run: func(cmd *cobra.Command, args []string) {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(descriptorSchema()))
	},
}

var descriptorCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a descriptor file without playing it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		desc, err := readDescriptor(args[0])
		handleErr(err)

		fmt.Printf("%s %s plays %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Bold(desc.String()),
			style.Faint(desc.PrimaryURL()),
		)
	},
}
