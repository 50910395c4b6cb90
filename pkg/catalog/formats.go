package catalog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents the supported catalog source formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatYAML               // species list document
	FormatSQLite             // PokeAPI-style tables
)

// FormatInfo contains metadata about a catalog file format
type FormatInfo struct {
	Format      FileFormat
	Name        string
	Description string
	Extensions  []string
	MinSize     int64
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatYAML: {
		Format:      FormatYAML,
		Name:        "yaml",
		Description: "YAML species list",
		Extensions:  []string{".yaml", ".yml"},
		MinSize:     1,
	},
	FormatSQLite: {
		Format:      FormatSQLite,
		Name:        "sqlite",
		Description: "SQLite PokeAPI tables",
		Extensions:  []string{".db", ".sqlite", ".sqlite3"},
		MinSize:     100, // sqlite header
	},
}

// sqliteMagic is the first 16 bytes of every sqlite3 database file.
var sqliteMagic = []byte("SQLite format 3\x00")

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Name
	}
	return "unknown"
}

// ParseFormat maps a config value ("yaml", "sqlite", "auto", "") to a format.
// "auto" and "" return FormatUnknown so callers fall back to detection.
func ParseFormat(name string) (FileFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return FormatUnknown, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "sqlite", "sqlite3", "db":
		return FormatSQLite, nil
	}
	return FormatUnknown, fmt.Errorf("unknown catalog format %q", name)
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("unknown format: %v", expectedFormat)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	if expectedFormat == FormatSQLite {
		return validateSQLiteHeader(filename)
	}
	return nil
}

// validateSQLiteHeader reads the magic header string of a sqlite file
func validateSQLiteHeader(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	header := make([]byte, len(sqliteMagic))
	if _, err := file.Read(header); err != nil {
		return fmt.Errorf("failed to read header from %s: %w", filename, err)
	}
	if !bytes.Equal(header, sqliteMagic) {
		return fmt.Errorf("file %s is not a sqlite database", filename)
	}

	log.Debugf("SQLite file %s validated", filename)
	return nil
}

// DetectFileFormat attempts to detect the format of a file, first by
// extension and then by content.
func DetectFileFormat(filename string) (FileFormat, error) {
	if format := FormatFromExtension(filename); format != FormatUnknown {
		if err := ValidateFileFormat(filename, format); err != nil {
			return FormatUnknown, err
		}
		return format, nil
	}

	if err := validateSQLiteHeader(filename); err == nil {
		return FormatSQLite, nil
	}

	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
}

// FormatFromExtension maps a file extension to its format without touching
// the file.
func FormatFromExtension(filename string) FileFormat {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e == ext {
				return format
			}
		}
	}
	return FormatUnknown
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}
