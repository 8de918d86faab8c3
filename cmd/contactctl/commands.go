package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"contactgate/internal/client/submission"
	"contactgate/internal/core/contact"

	"github.com/spf13/cobra"
)

// errNotSent makes the exit status non-zero without printing twice
var errNotSent = errors.New("message not sent")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "contactctl",
		Short:         "Send a message through a contactgate endpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(composeCmd(), sendCmd(), statusCmd(), discardCmd())
	return root
}

func composeCmd() *cobra.Command {
	var f submission.Form
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Validate a message and keep it for the verification step",
		Long: `Validate a message and keep it for the verification step.

The message body is read from --message, or from stdin when the flag is empty.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			m, store, err := cfg.machine()
			if err != nil {
				return err
			}
			// the fill timer includes the time spent typing into stdin
			if _, err := m.Start(); err != nil {
				return err
			}
			if f.Message == "" {
				b, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), contact.MaxBodyBytes))
				if err != nil {
					return err
				}
				f.Message = string(b)
			}

			s, err := m.Compose(f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch s.State {
			case submission.StatePendingVerification:
				fmt.Fprintf(out, "Message from %s saved. It expires in %s.\n", contact.MaskEmail(s.Payload.Email), store.TTL())
				fmt.Fprintln(out, "Complete verification, then run: contactctl send --token <token>")
				return nil
			case submission.StateSuccess:
				fmt.Fprintln(out, s.Message)
				return nil
			default:
				fmt.Fprintln(cmd.ErrOrStderr(), s.Message)
				return errNotSent
			}
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "sender name")
	cmd.Flags().StringVar(&f.Email, "email", "", "reply address")
	cmd.Flags().StringVar(&f.Message, "message", "", "message body (default: read stdin)")
	cmd.Flags().StringVar(&f.Honeypot, "website", "", "")
	_ = cmd.Flags().MarkHidden("website")
	return cmd
}

func sendCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Deliver the saved message with a verification token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token = strings.TrimSpace(token)
			if token == "" {
				return errors.New("--token is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			m, _, err := cfg.machine()
			if err != nil {
				return err
			}

			s, err := m.Resume()
			if err != nil {
				return err
			}
			if s.State == submission.StateNoPending {
				fmt.Fprintln(cmd.ErrOrStderr(), s.Message)
				return errNotSent
			}
			if _, err := m.Challenge(); err != nil {
				return err
			}
			if _, err := m.Verified(cmd.Context(), token); err != nil {
				return err
			}
			s, err = m.Send(cmd.Context())
			if err != nil {
				return err
			}

			if s.State == submission.StateSuccess {
				fmt.Fprintln(cmd.OutOrStdout(), s.Message)
				if s.ReferenceID != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Reference: %s\n", s.ReferenceID)
				}
				return nil
			}
			fmt.Fprintln(cmd.ErrOrStderr(), s.Message)
			if s.Retryable {
				fmt.Fprintln(cmd.ErrOrStderr(), "Your message is still saved; run send again with a fresh token.")
			}
			return errNotSent
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "verification token from the challenge widget")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the saved message, if any",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, store, err := cfg.machine()
			if err != nil {
				return err
			}
			env, ok := store.Load()
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, "No pending message.")
				return nil
			}
			left := store.TTL() - time.Since(env.CreatedAt)
			fmt.Fprintf(out, "From:    %s <%s>\n", env.Name, contact.MaskEmail(env.Email))
			fmt.Fprintf(out, "Length:  %d characters\n", len([]rune(env.Message)))
			fmt.Fprintf(out, "Expires: in %s\n", left.Round(time.Second))
			return nil
		},
	}
}

func discardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "Drop the saved message",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			m, _, err := cfg.machine()
			if err != nil {
				return err
			}
			m.Discard()
			fmt.Fprintln(cmd.OutOrStdout(), "Discarded.")
			return nil
		},
	}
}
