// Package main provides pmchat, a terminal project-management assistant.
// Every message is answered using a persistent knowledge base organized by
// the ten PMBOK knowledge areas, and facts found in the exchange are merged
// back into that knowledge base.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/entrhq/pmchat/pkg/agent"
	"github.com/entrhq/pmchat/pkg/agent/slash"
	appconfig "github.com/entrhq/pmchat/pkg/config"
	"github.com/entrhq/pmchat/pkg/executor/cli"
	"github.com/entrhq/pmchat/pkg/executor/tui"
	"github.com/entrhq/pmchat/pkg/knowledge"
	"github.com/entrhq/pmchat/pkg/llm/openai"
	"github.com/entrhq/pmchat/pkg/logging"
)

const (
	version      = "0.1.0"              // Version of pmchat
	defaultModel = openai.DefaultModel // Default model to use
)

// Config holds the application configuration
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	ExtractionModel string
	KnowledgePath   string
	ConfigPath      string
	Message         string
	Format          string
	History         int
	ShowKB          bool
	CLI             bool
	TUI             bool
	Ephemeral       bool
	ShowVersion     bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("pmchat v%s\n", version)
		return
	}

	if err := config.validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, os.Stdout); err != nil {
		stop()
		if errors.Is(err, context.Canceled) {
			fmt.Println("\nShutting down.")
			return
		}
		log.Fatalf("Application error: %v", err)
	}
}

// parseFlags parses command line flags
func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.APIKey, "api-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
	flag.StringVar(&config.BaseURL, "base-url", "", "OpenAI API base URL (or set OPENAI_BASE_URL env var)")
	flag.StringVar(&config.Model, "model", "", "LLM model to use (default "+defaultModel+")")
	flag.StringVar(&config.ExtractionModel, "extraction-model", "", "LLM model for knowledge extraction (default: same as -model)")
	flag.StringVar(&config.KnowledgePath, "kb", "", "Knowledge base file (or set PMCHAT_KB env var, default "+knowledge.DefaultFileName+")")
	flag.StringVar(&config.ConfigPath, "config", "", "Config file (default ~/.pmchat/config.json)")
	flag.StringVar(&config.Message, "message", "", "Send one message, print the answer and exit")
	flag.StringVar(&config.Format, "format", "text", "Output format for -show-kb: text, json or yaml")
	flag.IntVar(&config.History, "history", -1, "Number of earlier exchanges sent with each question (0 disables)")
	flag.BoolVar(&config.ShowKB, "show-kb", false, "Print the knowledge base and exit")
	flag.BoolVar(&config.CLI, "cli", false, "Use the line-mode interface")
	flag.BoolVar(&config.TUI, "tui", false, "Use the terminal UI (default)")
	flag.BoolVar(&config.Ephemeral, "ephemeral", false, "Keep the knowledge base in memory only")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pmchat - a project management assistant with a persistent knowledge base\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pmchat [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY     OpenAI API key\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_BASE_URL    OpenAI API base URL (for compatible APIs)\n")
		fmt.Fprintf(os.Stderr, "  PMCHAT_KB          Knowledge base file\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  pmchat                                   # TUI with ./%s\n", knowledge.DefaultFileName)
		fmt.Fprintf(os.Stderr, "  pmchat -cli -kb ~/projects/apollo.json\n")
		fmt.Fprintf(os.Stderr, "  pmchat -message \"The vendor contract was signed today\"\n")
		fmt.Fprintf(os.Stderr, "  pmchat -show-kb -format yaml\n")
	}

	flag.Parse()
	return config
}

// validate checks that the configuration is valid
func (c *Config) validate() error {
	if c.CLI && c.TUI {
		return fmt.Errorf("-cli and -tui are mutually exclusive")
	}
	switch c.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", c.Format)
	}
	if c.ShowKB && c.Message != "" {
		return fmt.Errorf("-show-kb and -message are mutually exclusive")
	}
	return nil
}

func (c *Config) flags() appconfig.Flags {
	return appconfig.Flags{
		Model:         c.Model,
		BaseURL:       c.BaseURL,
		APIKey:        c.APIKey,
		KnowledgePath: c.KnowledgePath,
		History:       c.History,
	}
}

// run executes the main application logic
func run(ctx context.Context, config *Config, out io.Writer) error {
	settings, err := appconfig.Open(config.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	kbPath := appconfig.ResolveKnowledgePath(settings.Knowledge, config.flags())
	var store knowledge.Store = knowledge.NewFileStore(kbPath)
	if config.Ephemeral {
		store = knowledge.NewMemoryStore(nil)
		kbPath = ""
	}

	// Printing the knowledge base needs no model.
	if config.ShowKB {
		return printKnowledgeBase(ctx, store, config.Format, out)
	}

	provider, err := appconfig.BuildProvider(settings.LLM, config.flags(), defaultModel)
	if err != nil {
		return err
	}

	extractionModel := config.ExtractionModel
	if extractionModel == "" {
		extractionModel = settings.LLM.GetExtractionModel()
	}
	assistant := agent.NewAssistant(provider, agent.WithExtractionModel(extractionModel))

	agentLog := newLogger("agent")
	defer agentLog.Close()
	agentLog.Infof("starting pmchat v%s: model=%s extraction_model=%s kb=%q",
		version, assistant.Model(), assistant.ExtractionModel(), kbPath)

	processor := agent.NewProcessor(store, assistant, assistant,
		agent.WithLogger(agentLog),
		agent.WithHistory(appconfig.ResolveHistory(settings.Knowledge, config.flags())),
	)

	if config.Message != "" {
		return runOnce(ctx, processor, config.Message, out)
	}

	handler := slash.NewHandler(processor)
	if config.CLI {
		cliLog := newLogger("cli")
		defer cliLog.Close()
		return cli.NewExecutor(processor,
			cli.WithHandler(handler),
			cli.WithLogger(cliLog),
			cli.WithBanner(fmt.Sprintf("Project Assistant (%s)", assistant.Model())),
		).Run(ctx)
	}

	tuiLog := newLogger("tui")
	defer tuiLog.Close()
	return tui.NewExecutor(processor,
		tui.WithHandler(handler),
		tui.WithLogger(tuiLog),
		tui.WithKnowledgePath(kbPath),
		tui.WithTitle(fmt.Sprintf("Project Assistant · %s", assistant.Model())),
	).Run(ctx)
}

// runOnce processes a single message. A failed extraction is reported on
// stderr and the answer is still printed.
func runOnce(ctx context.Context, processor *agent.Processor, message string, out io.Writer) error {
	result, err := processor.Turn(ctx, message)
	if result != nil {
		fmt.Fprintln(out, result.Answer)
		if result.ExtractionErr != nil {
			fmt.Fprintf(os.Stderr, "warning: knowledge base not updated: %v\n", result.ExtractionErr)
		}
	}
	return err
}

func printKnowledgeBase(ctx context.Context, store knowledge.Store, format string, out io.Writer) error {
	kb, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load knowledge base: %w", err)
	}

	switch format {
	case "json":
		fmt.Fprintln(out, kb.Context())
	case "yaml":
		b, err := kb.YAML()
		if err != nil {
			return fmt.Errorf("failed to render knowledge base: %w", err)
		}
		fmt.Fprint(out, string(b))
	default:
		fmt.Fprintln(out, strings.TrimRight(kb.Text(), "\n"))
	}
	return nil
}

// newLogger opens the session log for component, falling back to a
// discarding logger so diagnostics never reach the terminal UI.
func newLogger(component string) *logging.Logger {
	l, err := logging.NewLogger(component)
	if err != nil {
		return logging.NewNopLogger()
	}
	return l
}
