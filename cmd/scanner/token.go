package main

import (
	"errors"

	"github.com/spf13/cobra"

	jwtmw "pattern_scanner/internal/platform/jwt"
)

func newTokenCmd(opts *options) *cobra.Command {
	var (
		subject string
		scopes  []string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the signals API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			tok, err := jwtmw.NewGenerator(cfg.JWTSecret, cfg.JWTExpiration).GenerateToken(subject, scopes)
			if err != nil {
				return err
			}
			cmd.Println(tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "client name stored in the sub claim")
	cmd.Flags().StringSliceVar(&scopes, "scopes", []string{jwtmw.ScopeRead}, "granted scopes ("+jwtmw.ScopeRead+", "+jwtmw.ScopeScan+")")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
