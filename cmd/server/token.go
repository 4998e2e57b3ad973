package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/tripledger/internal/auth"
)

var (
	flagSubject string
	flagTrips   []string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token signed with JWT_SECRET",
	Long: "Issue a bearer token signed with JWT_SECRET. Without --trip the token " +
		"grants access to every trip and may create new ones.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL).Generate(flagSubject, flagTrips)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&flagSubject, "subject", "", "Name of the token holder")
	tokenCmd.Flags().StringSliceVar(&flagTrips, "trip", nil, "Trip ID the token is limited to (repeatable)")
	tokenCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(tokenCmd)
}
