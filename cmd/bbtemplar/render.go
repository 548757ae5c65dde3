package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/nikitaxru/bbtemplar"
	"github.com/nikitaxru/bbtemplar/internal/watcher"
)

type renderOptions struct {
	data   []string
	set    []string
	where  []string
	output string
	watch  bool
}

func newRenderCmd(a *app) *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:   "render [TEMPLATE|-]",
		Short: "Render a template with data files",
		Example: `  bbtemplar render post.tpl -d release.json
  bbtemplar render post.tpl -d files.xlsx --where 'Files=platform == "win"' --html -o post.html
  cat post.tpl | bbtemplar render - --set title="Build 42"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRender(cmd, argOrEmpty(args), opts)
		},
	}
	f := cmd.Flags()
	f.StringArrayVarP(&opts.data, "data", "d", nil, "data file (.json, .yaml, .yml, .xlsx); repeatable, later files override earlier keys")
	f.StringArrayVar(&opts.set, "set", nil, "set a value: path=value (repeatable)")
	f.StringArrayVar(&opts.where, "where", nil, "filter loop items: name=expression (repeatable)")
	f.String("separator", "", "text inserted between loop iterations")
	f.Bool("html", false, "convert the rendered BBCode to HTML")
	f.StringVarP(&opts.output, "output", "o", "", "write result to file instead of stdout")
	f.BoolVarP(&opts.watch, "watch", "w", false, "re-render when the template or data files change")
	_ = a.v.BindPFlag("render.separator", f.Lookup("separator"))
	_ = a.v.BindPFlag("render.html", f.Lookup("html"))
	return cmd
}

func (a *app) runRender(cmd *cobra.Command, tplPath string, opts renderOptions) error {
	if opts.watch && (tplPath == "" || tplPath == "-") {
		return errors.New("--watch требует путь к шаблону, stdin не отслеживается")
	}
	once := func() error {
		src, err := readInput(cmd, tplPath)
		if err != nil {
			return err
		}
		ctx, err := buildContext(opts)
		if err != nil {
			return err
		}
		engine := bbtemplar.New(
			bbtemplar.WithSeparator(a.cfg.Render.Separator),
			bbtemplar.WithLogger(a.logger),
		)
		out := engine.Render(src, ctx)
		if a.cfg.Render.HTML {
			out = bbtemplar.ConvertMarkup(out)
		}
		return a.writeOutput(cmd, opts.output, out)
	}

	if err := once(); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.watch(sigCtx, append([]string{tplPath}, opts.data...), once)
}

func (a *app) watch(ctx context.Context, paths []string, rerender func() error) error {
	fw, err := watcher.New(a.cfg.Watch.Debounce, a.logger)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := fw.Add(p); err != nil {
			return err
		}
	}
	a.logger.Info("ожидание изменений", "files", len(paths))
	return fw.Run(ctx, func(changed []string) error {
		a.logger.Info("перерисовка", "changed", strings.Join(changed, ", "))
		return rerender()
	})
}

// buildContext собирает контекст: файлы данных по порядку, затем --set, затем --where.
func buildContext(opts renderOptions) (bbtemplar.Context, error) {
	var parts []bbtemplar.Context
	for _, path := range opts.data {
		c, err := bbtemplar.LoadContextFile(path)
		if err != nil {
			return nil, err
		}
		parts = append(parts, c)
	}
	ctx := bbtemplar.MergeContexts(parts...)
	for _, s := range opts.set {
		k, v, err := bbtemplar.ParseAssignment(s)
		if err != nil {
			return nil, fmt.Errorf("--set: %w", err)
		}
		if err := bbtemplar.SetPath(ctx, k, v); err != nil {
			return nil, fmt.Errorf("--set: %w", err)
		}
	}
	for _, s := range opts.where {
		name, expression, err := bbtemplar.ParseAssignment(s)
		if err != nil {
			return nil, fmt.Errorf("--where: %w", err)
		}
		if err := bbtemplar.FilterLoop(ctx, name, expression); err != nil {
			return nil, fmt.Errorf("--where: %w", err)
		}
	}
	return ctx, nil
}

// writeOutput пишет в stdout или атомарно в файл.
func (a *app) writeOutput(cmd *cobra.Command, path, out string) error {
	if path == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}
	if err := atomic.WriteFile(path, strings.NewReader(out)); err != nil {
		return fmt.Errorf("запись %s: %w", path, err)
	}
	a.logger.Info("результат записан", "path", path, "bytes", len(out))
	return nil
}
