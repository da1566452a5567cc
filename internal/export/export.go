package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Lumos-Labs-HQ/unigen/internal/types"
)

const ManifestFile = "manifest.json"

// PerformExport writes one file per table into exportPath, replacing files
// that already exist. It stops at the first failure; tables before it stay
// written.
func PerformExport(exportPath, format string, tables []*types.Table) ([]string, error) {
	if err := os.MkdirAll(exportPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	var write func(string, *types.Table) error
	switch format {
	case "csv":
		write = writeCSV
	case "json":
		write = writeJSON
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}

	files := make([]string, 0, len(tables))
	for _, table := range tables {
		filePath := filepath.Join(exportPath, fmt.Sprintf("%s.%s", table.Name, format))
		if err := write(filePath, table); err != nil {
			return files, fmt.Errorf("failed to export %s: %w", table.Name, err)
		}
		files = append(files, filePath)
	}
	return files, nil
}

func writeCSV(filePath string, table *types.Table) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(table.Headers()); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, v := range row {
			record[i] = types.FormatValue(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return file.Close()
}

// record is one JSON object whose keys keep column order.
type record struct {
	keys   []string
	values []any
}

func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSON(filePath string, table *types.Table) error {
	keys := table.Headers()
	records := make([]record, table.Len())
	for i, row := range table.Rows {
		values := make([]any, len(row))
		for j, col := range table.Columns {
			switch {
			case !types.IsSet(row[j]):
				values[j] = nil
			case col.Kind == types.KindDate:
				values[j] = types.FormatValue(row[j])
			default:
				values[j] = types.Unwrap(row[j])
			}
		}
		records[i] = record{keys: keys, values: values}
	}

	jsonData, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := os.WriteFile(filePath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// NewManifest describes a run over tables, generated in order.
func NewManifest(seed int64, version string, order []string, tables []*types.Table) types.Manifest {
	counts := make(map[string]int, len(tables))
	for _, t := range tables {
		counts[t.Name] = t.Len()
	}
	return types.Manifest{
		RunID:       uuid.NewString(),
		Seed:        seed,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Version:     version,
		Order:       order,
		Tables:      counts,
	}
}

func WriteManifest(exportPath string, manifest types.Manifest) (string, error) {
	if err := os.MkdirAll(exportPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	filePath := filepath.Join(exportPath, ManifestFile)
	jsonData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(filePath, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return filePath, nil
}
