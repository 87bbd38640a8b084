package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/quickq/qq/internal/backend"
	"github.com/quickq/qq/internal/config"
	"github.com/quickq/qq/internal/executor"
	"github.com/quickq/qq/internal/prompt"
	"github.com/quickq/qq/internal/session"
	"github.com/quickq/qq/internal/ui"
)

var (
	// version is set by goreleaser at build time
	version = "dev"

	// CLI flags
	generate    bool
	model       string
	temperature float64
	includeEnv  bool
	noColor     bool
	debug       bool

	// exitCode is what the process terminates with; the exec action
	// replaces it with the executed command's own exit code.
	exitCode int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "qq [flags] <command or description>",
		Short: "Explain and generate shell commands using an LLM",
		Long: `qq explains an existing shell command line by line, or generates a
candidate command from a natural-language description and lets you
explain, execute, edit, reprompt or copy it interactively.

Examples:
  qq "ffmpeg -i in.mov -vcodec libx264 out.mov"
  qq -g "make an mp3 from video.mp4"`,
		Version: version,
		Args:    cobra.MinimumNArgs(1),
		RunE:    run,
	}

	rootCmd.Flags().BoolVarP(&generate, "generate", "g", false, "Generate a command from a description")
	rootCmd.Flags().StringVarP(&model, "model", "m", "gpt-4o-mini", "Model to use for completion")
	rootCmd.Flags().Float64VarP(&temperature, "temperature", "t", 0.5, "Temperature for completion")
	rootCmd.Flags().BoolVar(&includeEnv, "env", false, "Include environment information in command generation")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func run(cmd *cobra.Command, args []string) error {
	// Argument validation has passed; runtime failures should not dump
	// usage text.
	cmd.SilenceUsage = true

	query := strings.Join(args, " ")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	baseURL := ""
	if cfg != nil {
		if cfg.Model != "" && !cmd.Flags().Changed("model") {
			model = cfg.Model
		}
		if cfg.Temperature != nil && !cmd.Flags().Changed("temperature") {
			temperature = *cfg.Temperature
		}
		baseURL = cfg.BaseURL
		includeEnv = includeEnv || cfg.IncludeEnv
		noColor = noColor || cfg.NoColor
	}

	apiKey := config.APIKey()
	if apiKey == "" {
		return fmt.Errorf("no API key set: export OPENAI_API_KEY (or QQ_API_KEY)")
	}

	useColor := !noColor && ui.SupportsColor()

	client := backend.NewClient(backend.ClientConfig{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		Model:       model,
		Temperature: temperature,
		Debug:       debug,
	})
	prompts := prompt.NewBuilder(includeEnv, useColor)
	terminal := ui.NewTerminal(!useColor)
	ctx := context.Background()

	if generate {
		sess := session.New(session.ModeGenerate, query)
		if debug {
			fmt.Fprintf(os.Stderr, "[DEBUG] Main: session %s, generate mode, request %q\n", sess.ID, query)
		}
		loop := &session.Loop{
			Session:   sess,
			Backend:   client,
			Prompts:   prompts,
			UI:        terminal,
			Runner:    executor.ShellRunner{Debug: debug},
			Clipboard: clipboard.WriteAll,
			Debug:     debug,
		}
		exitCode = loop.Run(ctx)
		return nil
	}

	sess := session.New(session.ModeExplain, query)
	if debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] Main: session %s, explain mode, command %q\n", sess.ID, query)
	}
	return session.Explain(ctx, client, prompts, terminal, sess.OriginalInput)
}
