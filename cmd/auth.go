package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/carekiosk/kiosk/auth"
	"github.com/carekiosk/kiosk/color"
	"github.com/carekiosk/kiosk/config"
	"github.com/carekiosk/kiosk/icon"
	"github.com/carekiosk/kiosk/key"
	"github.com/carekiosk/kiosk/log"
	"github.com/carekiosk/kiosk/ratings"
	"github.com/carekiosk/kiosk/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(authCmd)
}

// authCmd manages the ratings service credentials of this kiosk.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the ratings service credentials",
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authLoginCmd.Flags().StringP("token", "t", "", "Token to store instead of prompting for it")
	authLoginCmd.Flags().StringP("endpoint", "e", "", "Ratings service base URL to save with the token")
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the ratings service token in the system keyring",
	Long: `Store the ratings service token in the system keyring and enable progress persistence.
The token is sent as a bearer token with every request to the ratings service.`,
	Run: func(cmd *cobra.Command, args []string) {
		endpoint := lo.Must(cmd.Flags().GetString("endpoint"))
		if endpoint == "" {
			endpoint = viper.GetString(key.RatingsEndpoint)
		}
		if endpoint == "" {
			input := survey.Input{
				Message: "Ratings service URL:",
				Help:    "Base URL of the ratings API, e.g. https://care.example.org/api",
			}
			handleErr(survey.AskOne(&input, &endpoint, survey.WithValidator(survey.Required)))
		}

		token := lo.Must(cmd.Flags().GetString("token"))
		if token == "" {
			password := survey.Password{
				Message: "Token:",
			}
			handleErr(survey.AskOne(&password, &token, survey.WithValidator(survey.Required)))
		}

		_, err := config.Parse(key.RatingsEndpoint, []string{endpoint})
		handleErr(err)

		handleErr(auth.SetToken(token))

		viper.Set(key.RatingsEndpoint, endpoint)
		viper.Set(key.RatingsEnable, true)
		handleErr(config.Write())

		// Fail early on a rejected token.
		if _, err := ratings.New(endpoint).List(context.Background()); err != nil {
			log.Warnf("ratings check: %v", err)
			if errors.Is(err, ratings.ErrUnauthorized) {
				handleErr(err)
			}
			fmt.Printf("%s token saved, but the service could not be reached: %v\n", style.Fg(color.Yellow)(icon.Get(icon.Fail)), err)
			return
		}

		fmt.Printf("%s logged in to %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Fg(color.Purple)(endpoint))
	},
}

func init() {
	authCmd.AddCommand(authLogoutCmd)
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the ratings service token and stop persisting progress",
	Run: func(cmd *cobra.Command, args []string) {
		if err := auth.DeleteToken(); err != nil {
			log.Warnf("delete token: %v", err)
		}

		viper.Set(key.RatingsEnable, false)
		handleErr(config.Write())

		fmt.Printf("%s logged out\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
