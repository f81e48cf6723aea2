package memory

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/vmihailenco/msgpack/v5"

	v1 "github.com/jumprun/formationsim/internal/storage/memory/export/v1"
)

// Export formats
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// exportFileName builds <name>_<timestamp>.<format>[.gz]
func (b *Backend) exportFileName() string {
	name := strings.NewReplacer(" ", "_", ":", "_", "/", "_").Replace(b.run.Name)
	if name == "" {
		name = "run"
	}
	timestamp := b.run.StartTime.Format("20060102_150405")

	filename := fmt.Sprintf("%s_%s.%s", name, timestamp, b.cfg.Format)
	if b.cfg.CompressOutput {
		filename += ".gz"
	}
	return filename
}

// export writes the current run to a file in the output directory
func (b *Backend) export() error {
	data := v1.Build(b.run, b.tracks, b.georef)
	outputPath := filepath.Join(b.cfg.OutputDir, b.exportFileName())

	// Ensure output directory exists
	if b.cfg.OutputDir != "" {
		if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	if b.cfg.CompressOutput {
		gzWriter := gzip.NewWriter(f)
		defer gzWriter.Close()
		w = gzWriter
	}

	if err := encode(w, b.cfg.Format, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	b.lastExportPath = outputPath
	b.log.Info().
		Str("path", outputPath).
		Int("entities", len(data.Entities)).
		Msg("Run exported")
	return nil
}

func encode(w io.Writer, format string, data v1.Export) error {
	if format == FormatMsgpack {
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		return enc.Encode(data)
	}
	return json.NewEncoder(w).Encode(data)
}

// ReadExport decodes an exported run file, gzip-compressed or not.
func ReadExport(path string) (v1.Export, error) {
	var data v1.Export

	f, err := os.Open(path)
	if err != nil {
		return data, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return data, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	if strings.HasSuffix(strings.TrimSuffix(path, ".gz"), "."+FormatMsgpack) {
		dec := msgpack.NewDecoder(r)
		dec.SetCustomStructTag("json")
		err = dec.Decode(&data)
	} else {
		err = json.NewDecoder(r).Decode(&data)
	}
	return data, err
}
