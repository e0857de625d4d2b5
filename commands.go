package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/card-statement-parser/internal/api"
	"github.com/insightdelivered/card-statement-parser/internal/config"
	"github.com/insightdelivered/card-statement-parser/internal/extractor"
	"github.com/insightdelivered/card-statement-parser/internal/mcp"
	"github.com/insightdelivered/card-statement-parser/internal/models"
	"github.com/insightdelivered/card-statement-parser/internal/parser"
	"github.com/insightdelivered/card-statement-parser/internal/writer"
)

func newParseCmd() *cobra.Command {
	var password, output string

	cmd := &cobra.Command{
		Use:   "parse [flags] <statement.pdf> [statement2.pdf ...]",
		Short: "Extract statement fields from PDF files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			if output != "" && len(args) > 1 {
				return errors.New("--output takes a single input file")
			}
			d := cfg.Dispatcher(parser.WithLogger(logger))

			for i, path := range args {
				logger.Info("processing", "file", path)
				fields, err := parseFile(cfg, d, path, password)
				if err != nil {
					if errors.Is(err, extractor.ErrCredential) {
						return fmt.Errorf("%s: %w (pass the statement password with --password)", path, err)
					}
					return fmt.Errorf("%s: %w", path, err)
				}
				if !fields.Recognized() {
					logger.Warn("no supported issuer recognized", "file", path)
				}

				if output != "" {
					if err := writer.WriteToFile(output, fields, cfg.OutputFormat()); err != nil {
						return err
					}
					logger.Info("written", "output", output)
					continue
				}
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				if err := writer.Render(cmd.OutOrStdout(), fields, cfg.OutputFormat()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password for encrypted statements")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to this file instead of stdout")
	return cmd
}

func parseFile(cfg *config.Config, d *parser.Dispatcher, path, password string) (models.StatementFields, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.StatementFields{}, fmt.Errorf("input file not found: %w", err)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".pdf" {
		return models.StatementFields{}, fmt.Errorf("expected .pdf file, got %q", ext)
	}
	if info.Size() > cfg.MaxFileSize {
		return models.StatementFields{}, fmt.Errorf("file is %d bytes; the limit is %d (see --maxfilesize)", info.Size(), cfg.MaxFileSize)
	}

	text, err := extractor.ExtractFile(path, password)
	if err != nil {
		return models.StatementFields{}, err
	}
	return d.ClassifyAndExtract(text), nil
}

func newTextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "text <statement.txt|->",
		Short: "Extract statement fields from already-extracted text (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			var data []byte
			if args[0] == "-" {
				data, err = io.ReadAll(io.LimitReader(cmd.InOrStdin(), cfg.MaxFileSize))
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("reading text: %w", err)
			}

			fields := cfg.Dispatcher(parser.WithLogger(logger)).ClassifyAndExtract(string(data))
			return writer.Render(cmd.OutOrStdout(), fields, cfg.OutputFormat())
		},
	}
}

func newDetectCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "detect [flags] <statement.pdf|statement.txt> ...",
		Short: "Print the issuer each statement would be parsed as",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			d := cfg.Dispatcher(parser.WithLogger(logger))

			for _, path := range args {
				text, err := readStatementText(path, password)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				issuer, ok := d.Detect(text)
				if !ok && !extractor.IsReadableText(text) {
					logger.Warn("text does not look like a card statement", "file", path)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, issuer)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password for encrypted statements")
	return cmd
}

// readStatementText extracts PDFs and reads anything else as plain text.
func readStatementText(path, password string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extractor.ExtractFile(path, password)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading text: %w", err)
	}
	return string(data), nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API (POST /api/parse, GET /api/health)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			h := api.NewHandler(cfg.Dispatcher(parser.WithLogger(logger)), logger, cfg.MaxFileSize, version)
			app := api.NewApp(h)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", cfg.Address())
				errc <- app.Listen(cfg.Address())
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return app.ShutdownWithContext(shutdownCtx)
			}
		},
	}
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the statement_parse tool over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			s, err := mcp.NewServer("card-statement-parser", version,
				cfg.Dispatcher(parser.WithLogger(logger)), logger, cfg.MaxFileSize)
			if err != nil {
				return err
			}
			return s.Run(cmd.Context())
		},
	}
}
