package scorectl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/okian/admitcalc/internal/domain/types"
	"github.com/okian/admitcalc/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Run executes cfg.Command. Exports and the result go to cfg.File, or to
// stdout when no file is given.
func Run(ctx context.Context, cfg *Config, stdout io.Writer) error {
	log := logger.Get().Named("scorectl")
	log.Debug(ctx, "running command",
		logger.String("command", cfg.Command),
		logger.String("baseURL", cfg.BaseURL),
		logger.String("file", cfg.File))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	switch cfg.Command {
	case CommandExportInstitutions:
		return export(ctx, client, cfg, "/institutions/export", stdout)
	case CommandExportScoreSets:
		return export(ctx, client, cfg, "/score-sets/export", stdout)
	case CommandImportInstitutions:
		return importFile(ctx, client, cfg, "/institutions/import", stdout)
	case CommandImportScoreSets:
		return importFile(ctx, client, cfg, "/score-sets/import", stdout)
	case CommandResult:
		return export(ctx, client, cfg, "/result", stdout)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cfg.Command)
	}
}

func export(ctx context.Context, client *HTTPClient, cfg *Config, path string, stdout io.Writer) error {
	body, err := client.Get(ctx, path)
	if err != nil {
		return err
	}
	out, err := fromWire(body, formatFor(cfg.Format, cfg.File))
	if err != nil {
		return err
	}
	if cfg.File == "" {
		_, err = stdout.Write(out)
		return err
	}
	if err := writeFile(cfg.File, out); err != nil {
		return err
	}
	logger.Get().Info(ctx, "exported", logger.String("path", path), logger.String("file", cfg.File))
	return nil
}

func importFile(ctx context.Context, client *HTTPClient, cfg *Config, path string, stdout io.Writer) error {
	if cfg.File == "" {
		return ErrMissingFile
	}
	raw, err := os.ReadFile(cfg.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cfg.File, err)
	}
	payload, err := toWire(raw, formatFor(cfg.Format, cfg.File))
	if err != nil {
		return err
	}
	body, err := client.Post(ctx, path, payload)
	if err != nil {
		return err
	}

	var report types.ImportReport
	if err := json.Unmarshal(body, &report); err != nil {
		return fmt.Errorf("%w: invalid import report: %w", ErrAPI, err)
	}
	logger.Get().Info(ctx, "imported",
		logger.Int("added", len(report.Added)),
		logger.Int("discarded", report.Discarded))
	_, err = fmt.Fprintf(stdout, "added %d, discarded %d\n", len(report.Added), report.Discarded)
	return err
}

func writeFile(name string, data []byte) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(name, data, filePermission); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
