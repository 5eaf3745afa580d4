package backend

import (
	"errors"
	"fmt"
	"strings"

	"gstbooks/internal/config"
)

// FromAppConfig picks the backend settings out of the application config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	kind := BackendType(strings.ToLower(strings.TrimSpace(appConfig.DataBackend)))
	if !kind.IsValid() {
		return Config{}, fmt.Errorf("unknown data backend %q (want one of %s)",
			appConfig.DataBackend, strings.Join(backendTypeNames(), ", "))
	}

	return Config{
		Type:                     kind,
		SeedSampleData:           appConfig.SeedSampleData,
		SeedFile:                 appConfig.SeedFile,
		SQLiteDBPath:             appConfig.SQLiteDBPath,
		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleTransactionsSheet,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}, nil
}

// Validate reports every missing setting for the selected backend.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("unknown data backend %q", c.Type)
	}

	var errs []error
	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			errs = append(errs, errors.New("sqlite backend needs a database path"))
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, errors.New("sheets backend needs a spreadsheet ID"))
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errs = append(errs, errors.New("sheets backend needs service account credentials (JSON or file)"))
		}
	}
	return errors.Join(errs...)
}

func backendTypeNames() []string {
	types := []BackendType{MemoryBackend, SQLiteBackend, SheetsBackend}
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
