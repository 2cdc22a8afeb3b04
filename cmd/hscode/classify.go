package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/hscode/internal/cli"
	"github.com/Veraticus/hscode/internal/common"
	"github.com/Veraticus/hscode/internal/config"
	"github.com/Veraticus/hscode/internal/llm"
	"github.com/Veraticus/hscode/internal/model"
	"github.com/Veraticus/hscode/internal/report"
	"github.com/Veraticus/hscode/internal/session"
	"github.com/Veraticus/hscode/internal/storage"
	"github.com/Veraticus/hscode/internal/tui"
	"github.com/spf13/cobra"
)

// maxRefineAttempts bounds how often an interactive user may answer again
// after a failed refinement.
const maxRefineAttempts = 2

func classifyCmd() *cobra.Command {
	var (
		opts     exportOptions
		langFlag string
		answer   string
		savePath string
		noLoader bool
	)

	cmd := &cobra.Command{
		Use:   "classify IMAGE",
		Short: "Predict HS codes for a product photo",
		Long: `Predict the most likely HS codes for a PNG, JPG, or WEBP product photo.

When the candidates are ambiguous a clarifying question is asked and the
answer is used to refine them into a single confirmed code. Pass --answer
to answer non-interactively, by option number or text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			data, err := os.ReadFile(args[0]) //nolint:gosec // user-supplied image
			if err != nil {
				return common.NewUserError("Failed to read the image file.", err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			prefs := storage.NewPreferences(store, slog.Default())
			lang := prefs.Language(ctx)
			if langFlag != "" {
				if lang, err = model.ParseLanguage(langFlag); err != nil {
					return err
				}
			}

			tracker, err := initTracker(store)
			if err != nil {
				return err
			}

			llmCfg, err := config.LoadLLMConfig()
			if err != nil {
				return err
			}
			svc, err := llm.New(ctx, llmCfg, slog.Default())
			if err != nil {
				return err
			}

			sess := session.New(session.Config{
				Inference: svc,
				Quota:     tracker,
				Logger:    slog.Default(),
				Identity:  prefs.Identity(ctx),
				Language:  lang,
			})

			f := &flow{
				sess:        sess,
				in:          cmd.InOrStdin(),
				out:         cmd.OutOrStdout(),
				labels:      report.LabelsFor(lang),
				text:        tui.TextFor(lang),
				answer:      answer,
				interactive: isInteractive(os.Stdin) && isInteractive(os.Stdout),
				loader:      !noLoader && isInteractive(os.Stderr),
			}

			in, err := f.run(ctx, data)
			if err != nil {
				return exportAfterFailure(f.out, in, err, opts, slog.Default())
			}

			class := sess.Identity()
			fmt.Fprintln(f.out, cli.RenderQuota(class, tracker.Remaining(ctx, class), tracker.Ceiling(class)))

			if savePath != "" {
				if err := saveResult(savePath, newSavedResult(sess.ID(), in)); err != nil {
					return err
				}
				fmt.Fprintln(f.out, cli.FormatSuccess("Saved result to "+savePath))
			}
			return writeExports(f.out, in, opts, slog.Default())
		},
	}

	cmd.Flags().StringVar(&langFlag, "lang", "", "language of the results (en, id, ja); defaults to the saved preference")
	cmd.Flags().StringVar(&answer, "answer", "", "answer to the clarifying question, by number or text")
	cmd.Flags().StringVar(&savePath, "save", "", "save the result as JSON for a later export")
	cmd.Flags().BoolVar(&noLoader, "no-loader", false, "disable the animated loader")
	addExportFlags(cmd, &opts)

	return cmd
}

// flow drives one session from image to displayed result.
type flow struct {
	sess        *session.Session
	in          io.Reader
	out         io.Writer
	answer      string
	text        tui.Text
	labels      report.Labels
	interactive bool
	loader      bool
}

// run submits data, predicts, and refines when a clarification is offered
// and can be answered. It returns what is on display for export, including
// the candidates left after a failed refinement.
func (f *flow) run(ctx context.Context, data []byte) (report.Input, error) {
	if err := f.sess.SubmitImage(data, ""); err != nil {
		return report.Input{}, err
	}

	if err := f.step(ctx, f.text.Analyzing, f.text.Steps, f.sess.Predict); err != nil {
		return report.Input{}, err
	}

	switch st := f.sess.State().(type) {
	case session.CandidatesReady:
		fmt.Fprintln(f.out, cli.RenderCandidates(st.Candidates, f.labels))
	case session.AwaitingClarification:
		fmt.Fprintln(f.out, cli.RenderCandidates(st.Candidates, f.labels))
		if err := f.clarify(ctx, st.Clarification); err != nil {
			in, _ := f.sess.Export()
			return in, err
		}
	}
	if err := ctx.Err(); err != nil {
		return report.Input{}, err
	}

	in, ok := f.sess.Export()
	if !ok {
		return report.Input{}, fmt.Errorf("%w: nothing to export", common.ErrExportFailed)
	}
	return in, nil
}

// exportAfterFailure writes the requested exports of whatever was on display
// when runErr ended the flow, then returns runErr.
func exportAfterFailure(w io.Writer, in report.Input, runErr error, opts exportOptions, logger *slog.Logger) error {
	if len(in.Records) == 0 || !opts.requested() {
		return runErr
	}
	if err := writeExports(w, in, opts, logger); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

func (f *flow) clarify(ctx context.Context, clar model.ClarificationRequest) error {
	var prompter *cli.Prompter
	if f.interactive {
		prompter = cli.NewPrompter(f.in, f.out, f.labels)
	}

	for attempt := 1; ; attempt++ {
		option, ok := f.choose(ctx, clar, prompter)
		if !ok {
			return nil
		}

		err := f.step(ctx, f.text.Refining, nil, func(ctx context.Context) error {
			return f.sess.SelectOption(ctx, option)
		})
		if err == nil {
			break
		}

		failed, isFailed := f.sess.State().(session.Failed)
		if prompter == nil || attempt >= maxRefineAttempts || !isFailed || !failed.Recoverable() {
			return err
		}
		fmt.Fprintln(f.out, cli.FormatError(common.UserMessage(err)))
		f.answer = ""
	}

	if st, ok := f.sess.State().(session.Refined); ok {
		fmt.Fprintln(f.out, cli.RenderFinal(st.Final, st.Answer, f.labels))
	}
	return nil
}

// choose resolves the answer from --answer or the prompter. It reports false
// when the question is left unanswered.
func (f *flow) choose(ctx context.Context, clar model.ClarificationRequest, prompter *cli.Prompter) (string, bool) {
	if f.answer != "" {
		if option, ok := cli.MatchOption(clar, f.answer); ok {
			return option, true
		}
		fmt.Fprintln(f.out, cli.FormatWarning(fmt.Sprintf("--answer %q is not one of the offered options", f.answer)))
	}

	if prompter == nil {
		fmt.Fprintln(f.out, cli.FormatInfo(clar.Question))
		for i, opt := range clar.Options {
			fmt.Fprintf(f.out, "  [%d] %s\n", i+1, opt)
		}
		fmt.Fprintln(f.out, cli.FormatInfo("Re-run with --answer to refine the prediction."))
		return "", false
	}

	option, err := prompter.Choose(ctx, clar)
	if err != nil {
		if !errors.Is(err, cli.ErrInputCanceled) {
			fmt.Fprintln(f.out, cli.FormatWarning(common.UserMessage(err)))
		}
		return "", false
	}
	return option, true
}

// step runs op behind the loader when one is enabled.
func (f *flow) step(ctx context.Context, title string, steps []string, op func(context.Context) error) error {
	if !f.loader {
		return op(ctx)
	}

	_, err := tui.Run(ctx, tui.Options{
		Output: os.Stderr,
		Title:  title,
		Moment: f.text.Moment,
		Steps:  steps,
	}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
