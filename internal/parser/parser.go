package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcncl/jsongraph/internal/errors"
	"github.com/mcncl/jsongraph/internal/models"
)

// Format names a structured text syntax.
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Failure is what a Decoder reports when text cannot be decoded.
// Offset is only meaningful when HasOffset is true.
type Failure struct {
	Message   string
	Offset    int
	HasOffset bool
}

// Error implements error so a Failure can be wrapped by callers.
func (f *Failure) Error() string {
	return f.Message
}

// Decoder attempts to decode a text blob into a structured value.
type Decoder interface {
	TryDecode(text string) (models.JSONValue, *Failure)
}

// ParseFormat converts a user supplied format name.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatTOML:
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%q: %w", name, errors.ErrUnsupportedFormat)
	}
}

// DetectFormat picks a format from a file extension, defaulting to JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Resolve replaces FormatAuto with the format detected from path.
func Resolve(format Format, path string) Format {
	if format == FormatAuto || format == "" {
		return DetectFormat(path)
	}
	return format
}

// NewDecoder returns the decoder for format. FormatAuto decodes JSON.
func NewDecoder(format Format) Decoder {
	switch format {
	case FormatYAML:
		return YAMLDecoder{}
	case FormatTOML:
		return TOMLDecoder{}
	default:
		return JSONDecoder{}
	}
}

// SupportedExtension reports whether path has an extension any decoder understands.
func SupportedExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml", ".toml":
		return true
	default:
		return false
	}
}

// ReadFile returns the content of filePath, rejecting missing and empty files.
func ReadFile(filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return "", errors.NewInputError(fmt.Sprintf("failed to open file '%s'", filePath), err)
	}
	defer func() {
		_ = file.Close()
	}()

	stat, err := file.Stat()
	if err != nil {
		return "", errors.NewInputError(fmt.Sprintf("failed to get file stats for '%s'", filePath), err)
	}
	if stat.IsDir() {
		return "", errors.NewInputError(fmt.Sprintf("'%s' is a directory", filePath), errors.ErrInvalidFilePath)
	}
	if stat.Size() == 0 {
		return "", errors.NewInputError(fmt.Sprintf("input file '%s' is empty", filePath), errors.ErrFileEmpty)
	}

	return ReadAll(file)
}

// ReadAll reads r to EOF and returns it as text.
func ReadAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.NewInputError("failed to read input", err)
	}
	return string(data), nil
}
