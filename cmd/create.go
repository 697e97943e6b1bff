package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kayz/skillforge/internal/config"
	"github.com/kayz/skillforge/internal/conversation"
	"github.com/kayz/skillforge/internal/engine"
	"github.com/kayz/skillforge/internal/generator"
	"github.com/kayz/skillforge/internal/history"
	"github.com/kayz/skillforge/internal/logger"
	"github.com/kayz/skillforge/internal/provider"
	"github.com/kayz/skillforge/internal/skill"
	"github.com/kayz/skillforge/internal/validator"
)

func init() {
	rootCmd.AddCommand(newCreateCommand())
}

func newCreateCommand() *cobra.Command {
	var (
		output       string
		maxQuestions int
		withHooks    bool
		autoApprove  bool
		supporting   bool
		providerName string
		modelName    string
	)

	cmd := &cobra.Command{
		Use:   "create [intent]",
		Short: "Create a skill document through a guided question session",
		Long: `Create starts a short dialogue: the backend asks targeted questions
about your intent, you answer (or press Enter twice to skip one), and a
validated SKILL.md is generated from the conversation.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var intent string
			if len(args) > 0 {
				intent = args[0]
			} else {
				in := bufio.NewReader(cmd.InOrStdin())
				fmt.Fprint(cmd.OutOrStdout(), "What should the skill do? ")
				intent, err = readLine(in)
				if err != nil {
					return err
				}
			}
			if providerName != "" {
				cfg.AI.Provider = providerName
			}
			if modelName != "" {
				cfg.AI.Model = modelName
			}
			if !cmd.Flags().Changed("max-questions") {
				maxQuestions = cfg.Questions.MaxQuestions
			}
			if output == "" {
				output = cfg.Output.DefaultLocation
			}

			baseDir, err := resolveOutputDir(cfg, output)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runCreate(ctx, cmd, cfg, createOptions{
				intent:       intent,
				baseDir:      baseDir,
				maxQuestions: maxQuestions,
				withHooks:    withHooks,
				autoApprove:  autoApprove,
				supporting:   supporting,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "",
		"Where to write the skill: personal (~/.claude/skills) or project (.claude/skills)")
	cmd.Flags().IntVarP(&maxQuestions, "max-questions", "n", 5,
		"Maximum number of clarifying questions")
	cmd.Flags().BoolVar(&withHooks, "hooks", false,
		"Gather requirements for lifecycle hooks and include them in the skill")
	cmd.Flags().BoolVarP(&autoApprove, "yes", "y", false,
		"Write the generated skill without asking for confirmation")
	cmd.Flags().BoolVar(&supporting, "supporting", false,
		"Also generate README.md and an examples/ stub next to SKILL.md")
	cmd.Flags().StringVar(&providerName, "provider", "",
		"AI provider override: anthropic, openai, gemini, or a compatible alias")
	cmd.Flags().StringVar(&modelName, "model", "",
		"Model override for the selected provider")
	return cmd
}

type createOptions struct {
	intent       string
	baseDir      string
	maxQuestions int
	withHooks    bool
	autoApprove  bool
	supporting   bool
}

func runCreate(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts createOptions) error {
	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())

	backend, err := provider.New(cfg.AI)
	if err != nil {
		return describeProviderError(err)
	}

	stats := provider.NewSession()
	client := provider.NewClient(backend, stats, cfg.Retry)

	sess, err := engine.StartSession(engine.Options{
		Intent:       opts.intent,
		MaxQuestions: opts.maxQuestions,
		WantHooks:    opts.withHooks,
		Client:       client,
	})
	if err != nil {
		return err
	}

	rec := history.Record{
		SessionID: sess.ID(),
		Intent:    opts.intent,
		Outcome:   history.OutcomeAborted,
	}
	defer saveHistory(cfg, &rec, stats)

	fmt.Fprintf(out, "Creating skill for: %s\n", opts.intent)
	fmt.Fprintf(out, "Answer up to %d questions, or press Enter twice to skip one.\n\n", opts.maxQuestions)

	if err := runDialogue(ctx, sess, in, out); err != nil {
		rec.QuestionsAsked = sess.QuestionsAsked()
		return err
	}
	rec.QuestionsAsked = sess.QuestionsAsked()

	transcript, err := sess.Transcript()
	if err != nil {
		return err
	}

	val, err := validator.New(cfg.Validation)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\nGenerating skill document...")
	counted := &countingChatter{Client: client}
	gen := generator.New(counted, val, cfg.Retry, opts.withHooks)
	artifact, report, err := gen.Run(ctx, transcript)
	rec.Attempts = counted.calls
	if err != nil {
		rec.Outcome = history.OutcomeFailed
		return describeGenerationError(err)
	}
	rec.SkillName = artifact.Name

	content, err := artifact.Render()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n--- %s ---\n%s--- end ---\n", artifact.Name, content)
	for _, w := range report.Warnings() {
		fmt.Fprintf(out, "warning: %s\n", w.String())
	}

	if !opts.autoApprove {
		ok, err := confirm(in, out, fmt.Sprintf("Write to %s? [Y/n] ", opts.baseDir))
		if err != nil {
			return err
		}
		if !ok {
			rec.Outcome = history.OutcomeDiscarded
			fmt.Fprintln(out, "Discarded.")
			return nil
		}
	}

	if err := writeArtifact(artifact, opts.baseDir, opts.supporting, &rec); err != nil {
		return err
	}

	s := stats.Stats()
	fmt.Fprintf(out, "\nCreated %s\n", rec.OutputPath)
	fmt.Fprintf(out, "Requests: %d (retries: %d), tokens in/out: %d/%d\n",
		s.Requests, s.Retries, s.InputTokens, s.OutputTokens)
	return nil
}

// writeArtifact persists the accepted document and updates the session
// record. The record flips to written as soon as SKILL.md is on disk;
// supporting files failing afterwards must not misreport a session whose
// skill file exists.
func writeArtifact(a *skill.Artifact, baseDir string, supporting bool, rec *history.Record) error {
	path, err := a.Write(baseDir)
	if err != nil {
		rec.Outcome = history.OutcomeFailed
		return err
	}
	rec.Outcome = history.OutcomeWritten
	rec.OutputPath = path

	if supporting {
		if err := a.WriteSupportingFiles(baseDir); err != nil {
			return err
		}
	}
	return nil
}

// countingChatter counts generation calls so the session log records how
// many attempts the accepted (or abandoned) document took.
type countingChatter struct {
	*provider.Client
	calls int
}

func (c *countingChatter) Send(ctx context.Context, systemPrompt string, transcript *conversation.Transcript, newTurn conversation.Turn) (string, error) {
	c.calls++
	return c.Client.Send(ctx, systemPrompt, transcript, newTurn)
}

// runDialogue drives the question loop until the session is ready. Provider
// failures on a recoverable turn offer a retry instead of killing the run.
func runDialogue(ctx context.Context, sess *engine.Session, in *bufio.Reader, out io.Writer) error {
	for {
		prompt, err := sess.NextPrompt(ctx)
		for err != nil {
			retry, perr := offerRetry(in, out, err)
			if perr != nil {
				return perr
			}
			if !retry {
				sess.Abort()
				return fmt.Errorf("session aborted")
			}
			prompt, err = sess.RetryPrompt(ctx)
		}
		if prompt.Done {
			return nil
		}

		fmt.Fprintf(out, "Question %d (%d remaining after this):\n%s\n> ",
			prompt.Number, prompt.Remaining, prompt.Question)

		for {
			answer, err := readLine(in)
			if err != nil {
				return err
			}
			err = sess.SubmitAnswer(answer)
			if errors.Is(err, engine.ErrEmptyAnswer) {
				fmt.Fprint(out, "(press Enter again to skip this question)\n> ")
				continue
			}
			if err != nil {
				return err
			}
			break
		}
		fmt.Fprintln(out)
	}
}

func offerRetry(in *bufio.Reader, out io.Writer, err error) (bool, error) {
	var perr *provider.Error
	if errors.As(err, &perr) {
		fmt.Fprintf(out, "Backend error (%s): %v\n", perr.Kind, perr.Err)
	} else {
		fmt.Fprintf(out, "Error: %v\n", err)
	}
	return confirm(in, out, "Retry? [Y/n] ")
}

func confirm(in *bufio.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprint(out, question)
	line, err := readLine(in)
	if err != nil {
		return false, err
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "" || line == "y" || line == "yes", nil
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func resolveOutputDir(cfg *config.Config, location string) (string, error) {
	switch location {
	case "personal":
		return config.ExpandPath(cfg.Output.PersonalPath), nil
	case "project", "":
		return cfg.Output.ProjectPath, nil
	default:
		return "", fmt.Errorf("unknown output location %q (want personal or project)", location)
	}
}

func describeProviderError(err error) error {
	var perr *provider.Error
	if errors.As(err, &perr) && perr.Kind == provider.KindAuth {
		return fmt.Errorf("%w\nSet the provider's API key environment variable or api_key in the config file", err)
	}
	return err
}

func describeGenerationError(err error) error {
	var gerr *generator.Error
	if errors.As(err, &gerr) && gerr.Kind == generator.KindValidationExhausted {
		return fmt.Errorf("the generated document kept failing validation:\n%s\n\nTry again with more specific answers", gerr.Report)
	}
	return err
}

func saveHistory(cfg *config.Config, rec *history.Record, stats *provider.Session) {
	if cfg.History.Disabled {
		return
	}
	store, err := history.NewStore(config.ExpandPath(cfg.History.Path))
	if err != nil {
		logger.Warn("[HISTORY] could not open session log: %v", err)
		return
	}
	defer store.Close()

	s := stats.Stats()
	rec.InputTokens = s.InputTokens
	rec.OutputTokens = s.OutputTokens
	if err := store.Save(*rec); err != nil {
		logger.Warn("[HISTORY] could not record session: %v", err)
	}
}
