package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"postdigest/internal/config"
	"postdigest/internal/newsletter"

	"github.com/spf13/cobra"
)

var (
	newsletterOut    string
	newsletterNotify bool
)

var newsletterCmd = &cobra.Command{
	Use:   "newsletter",
	Short: "Fetch posts and write a newsletter in one shot",
	RunE:  newsletterAction,
}

func init() {
	newsletterCmd.Flags().StringVarP(&newsletterOut, "out", "o", newsletter.FileName, "output file, - for stdout")
	newsletterCmd.Flags().BoolVar(&newsletterNotify, "notify", false, "send the newsletter to the configured Telegram chat")
}

func newsletterAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if newsletterNotify && !cfg.TelegramEnabled() {
		return errors.New("--notify requires TELEGRAM_TOKEN and TELEGRAM_CHAT_ID")
	}
	if !newsletterNotify {
		cfg.TelegramToken = ""
		cfg.TelegramChatID = 0
	}

	log := newLogger(cmd.ErrOrStderr(), cfg.Level())
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			log.ErrorContext(ctx, "Failed to close app",
				"error", err)
		}
	}()

	result := a.monitor.Refresh(ctx)
	if result.SourceErr != nil {
		return fmt.Errorf("fetch posts: %w", result.SourceErr)
	}
	if result.Empty() {
		return errors.New("no posts found")
	}

	n, err := a.monitor.GenerateNewsletter(ctx)
	if err != nil {
		return fmt.Errorf("generate newsletter: %w", err)
	}

	body := strings.TrimSpace(n.Body) + "\n"

	if newsletterOut == "-" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), body)
		return err
	}

	if err = os.WriteFile(newsletterOut, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write newsletter: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Newsletter with %d posts written to %s\n", n.PostCount, newsletterOut)

	return nil
}
