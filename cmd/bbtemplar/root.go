package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nikitaxru/bbtemplar/internal/config"
	"github.com/nikitaxru/bbtemplar/internal/logging"
)

// app — общее состояние команд: конфигурация и логгер, собранные в PersistentPreRunE.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: logging.Nop()}

	root := &cobra.Command{
		Use:   "bbtemplar",
		Short: "Render BBCode output templates from JSON, YAML or XLSX data",
		Long: `bbtemplar renders text templates that use {path} placeholders,
<!--IF:cond--> ... <!--/IF:cond--> and <!--LOOP:name--> ... <!--/LOOP:name--> blocks,
and converts BBCode to HTML for preview.

Configuration is read from .bbtemplar.yaml, BBTEMPLAR_* environment variables and flags.`,
		Version:       fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default .bbtemplar.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = a.v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", root.PersistentFlags().Lookup("log-format"))

	root.AddCommand(
		newRenderCmd(a),
		newConvertCmd(a),
		newCheckCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if err := config.Init(a.v, a.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
		Output: cmd.ErrOrStderr(),
	})
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("конфигурация загружена", "file", used)
	}
	return nil
}

// readInput читает файл или stdin ("-" или пустой путь).
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("чтение stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
