package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/winterSteve25/props/internal/server"
	"github.com/winterSteve25/props/internal/store"
	propserr "github.com/winterSteve25/props/pkg/core/error"
	propslog "github.com/winterSteve25/props/pkg/core/log"
	"github.com/winterSteve25/props/pkg/props/diag"
	"github.com/winterSteve25/props/pkg/props/lexer"
	"github.com/winterSteve25/props/pkg/props/parser"
	"github.com/winterSteve25/props/pkg/props/pipeline"
)

// readSource reads the named file, or stdin for "-" or no argument
func readSource(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", propserr.Wrap(err, "failed to read stdin").
				WithCode(propserr.CodeIOFailed).
				WithOperation("cli.readSource")
		}
		return "<stdin>", string(data), nil
	}

	name := args[0]
	data, err := os.ReadFile(name)
	if err != nil {
		code := propserr.CodeIOFailed
		if os.IsNotExist(err) {
			code = propserr.CodeFileNotFound
		}
		return "", "", propserr.Wrap(err, "failed to read source").
			WithCode(code).
			WithOperation("cli.readSource").
			WithDetail("path", name)
	}
	return name, string(data), nil
}

// recovery resolves the recovery policy from the flag, falling back to config
func recovery(flag string) (parser.Recovery, error) {
	value := flag
	if value == "" {
		value = appConfig.Parser.Recovery
	}
	r, ok := parser.ParseRecovery(value)
	if !ok {
		return r, propserr.Newf("unknown recovery policy %q", value).
			WithCode(propserr.CodeInvalidInput).
			WithOperation("cli.recovery")
	}
	return r, nil
}

// runLocal runs source through the pipeline, rendering diagnostics to the
// command's stderr either as they are found or after the run.
func runLocal(cmd *cobra.Command, name, source, recoveryFlag string) (*pipeline.Unit, error) {
	r, err := recovery(recoveryFlag)
	if err != nil {
		return nil, err
	}

	renderer := diag.NewRenderer(appConfig.Render.Color)
	lines := lexer.Lines(source)
	stderr := cmd.ErrOrStderr()

	opts := pipeline.Options{Logger: logger, Recovery: r}
	if appConfig.Parser.PrintAsEncountered {
		opts.Report = func(d *diag.Diagnostic) {
			_ = renderer.Render(stderr, d, lines)
		}
	}

	unit, err := pipeline.New(opts).RunNamed(cmd.Context(), name, source)
	if err != nil {
		return nil, err
	}
	if !appConfig.Parser.PrintAsEncountered {
		_ = renderer.RenderAll(stderr, unit.Diagnostics, unit.Lines)
	}

	recordRun(cmd.Context(), unit)
	return unit, nil
}

// recordRun stores unit in the history database when history is enabled.
// Failures are logged and never fail the command.
func recordRun(ctx context.Context, unit *pipeline.Unit) {
	history, err := server.OpenHistory(appConfig.History.Enabled, appConfig.History.Path)
	if err != nil {
		logger.Warn("History unavailable", propslog.Err(err))
		return
	}
	if history == nil {
		return
	}
	defer history.Close()

	if err := history.Record(ctx, store.RunFromUnit(unit)); err != nil {
		logger.Warn("Failed to record run", propslog.Err(err))
	}
}

// encode writes v as indented JSON or YAML
func encode(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return propserr.Newf("unknown output format %q", format).
		WithCode(propserr.CodeInvalidInput).
		WithOperation("cli.encode")
}

func validFormat(format string) error {
	switch format {
	case "text", "json", "yaml":
		return nil
	}
	return propserr.Newf("unknown output format %q (want text, json or yaml)", format).
		WithCode(propserr.CodeInvalidInput).
		WithOperation("cli.format")
}

// diagnosticsErr is the command error for a remote result with diagnostics
func diagnosticsErr(n int) error {
	if n == 0 {
		return nil
	}
	return propserr.New(fmt.Sprintf("%d diagnostics", n)).
		WithCode(propserr.CodeParseFailed).
		WithOperation("cli.remote")
}
