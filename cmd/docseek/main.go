package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docseek"
	"github.com/fwojciec/docseek/sqlite"
	"github.com/fwojciec/docseek/yaml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, docseek.ErrorMessage(err))
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run(). Empty means the configured
	// path or the default location.
	DBPath string

	// SQLite database used by the semantic cache.
	DB *sqlite.DB

	// ConfigPath locates the YAML configuration file. Empty means defaults.
	ConfigPath string

	// Config is the effective configuration, set by Run.
	Config docseek.Config

	// Services for end-to-end testing. Nil values are built from Config.
	Oracle   docseek.Oracle
	Embedder docseek.Embedder
	Fetcher  docseek.Fetcher

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:     os.Getenv("DOCSEEK_DB"),
		ConfigPath: os.Getenv("DOCSEEK_CONFIG"),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	if m.DB != nil {
		if err := m.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.DB = nil
	}
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docseek"),
		kong.Description("Answer questions about a website by walking it page by page."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return docseek.Errorf(docseek.EINVALID, "no command specified. Run 'docseek --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	if cli.Config != "" {
		m.ConfigPath = cli.Config
	}

	m.Config, err = yaml.Load(m.ConfigPath)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Set DOCSEEK_CONFIG or --config to use a different configuration file")
		return err
	}
	if cli.Verbose {
		m.Config.Log.Level = "debug"
	}
	applyEnv(&m.Config)
	deps.Config = m.Config

	dbPath := m.DBPath
	if dbPath == "" {
		dbPath = m.Config.Database.Path
	}
	if dbPath == "" {
		dbPath = defaultDBPath()
	}
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set DOCSEEK_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}
	defer m.Close()

	if err := m.wire(ctx, deps, strings.Fields(kongCtx.Command())[0], stderr); err != nil {
		return err
	}
	if deps.Metrics != nil && m.Config.Metrics.File != "" {
		defer func() {
			if err := deps.Metrics.WriteTextfile(m.Config.Metrics.File); err != nil {
				deps.Logger.Warn("metrics export failed", "path", m.Config.Metrics.File, "error", err)
			}
		}()
	}

	return kongCtx.Run(deps)
}

// applyEnv fills missing provider API keys from the environment.
func applyEnv(cfg *docseek.Config) {
	if cfg.Oracle.APIKey == "" {
		cfg.Oracle.APIKey = providerKey(cfg.Oracle.Provider)
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = providerKey(cfg.Embedding.Provider)
	}
}

func providerKey(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	default:
		return os.Getenv("GEMINI_API_KEY")
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "docseek.db"
	}
	dir := filepath.Join(home, ".docseek")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "docseek.db")
}
