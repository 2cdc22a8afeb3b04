package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/hscode/internal/cli"
	"github.com/Veraticus/hscode/internal/model"
	"github.com/Veraticus/hscode/internal/storage"
	"github.com/spf13/cobra"
)

func quotaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show how many predictions are left today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			tracker, err := initTracker(store)
			if err != nil {
				return err
			}

			class := storage.NewPreferences(store, slog.Default()).Identity(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderQuota(class, tracker.Remaining(ctx, class), tracker.Ceiling(class)))
			return nil
		},
	}
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Use the authenticated daily quota",
		Long: `Mark this installation as authenticated so the higher daily quota
applies. Credentials are managed outside hscode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return setIdentity(cmd, model.IdentityAuthenticated)
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Return to the guest daily quota",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return setIdentity(cmd, model.IdentityGuest)
		},
	}
}

func setIdentity(cmd *cobra.Command, class model.IdentityClass) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := storage.NewPreferences(store, slog.Default()).SetIdentity(ctx, class); err != nil {
		return err
	}

	tracker, err := initTracker(store)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Now using the %s quota", class)))
	fmt.Fprintln(out, cli.RenderQuota(class, tracker.Remaining(ctx, class), tracker.Ceiling(class)))
	return nil
}

func languageCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "language [en|id|ja]",
		Short:     "Show or set the preferred language",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(model.LanguageEnglish), string(model.LanguageIndonesian), string(model.LanguageJapanese)},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			prefs := storage.NewPreferences(store, slog.Default())
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				fmt.Fprintln(out, prefs.Language(ctx))
				return nil
			}

			lang, err := model.ParseLanguage(args[0])
			if err != nil {
				return err
			}
			if err := prefs.SetLanguage(ctx, lang); err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess("Language set to "+string(lang)))
			return nil
		},
	}
}
