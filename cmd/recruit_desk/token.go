package main

import (
	"fmt"

	"github.com/jonathan/recruit-desk/internal/config"
	"github.com/jonathan/recruit-desk/internal/server"
	"github.com/spf13/cobra"
)

var tokenUserID string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token for a recruiter",
	Long:  `Sign a bearer token for --user-id with JWT_SECRET. The id is recorded as the actor on every change made with the token.`,
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user-id", "", "Recruiter id to issue the token for")
	_ = tokenCmd.MarkFlagRequired("user-id")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}

	token, err := server.NewJWTService(jwtConfig).GenerateToken(tokenUserID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
