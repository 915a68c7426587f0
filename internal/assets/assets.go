// Package assets provides the CSS shipped with the standalone preview
// output. Styles are embedded at compile time and addressed by name.
//
// Asset names are validated to prevent path traversal.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"strings"
)

//go:embed styles/*
var styles embed.FS

// Sentinel errors for asset loading.
var (
	ErrStyleNotFound = errors.New("style not found")
	ErrNameEmpty     = errors.New("asset name cannot be empty")
	ErrNameInvalid   = errors.New("asset name contains path separator or null byte")
)

// Style returns an embedded stylesheet by name, without the .css extension.
func Style(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return string(content), nil
}

// ViewerCSS returns the default preview stylesheet. The file is embedded, so
// a read failure is a build defect and panics.
func ViewerCSS() string {
	css, err := Style("viewer")
	if err != nil {
		panic(err)
	}
	return css
}

func validateName(name string) error {
	if name == "" {
		return ErrNameEmpty
	}
	if strings.ContainsAny(name, "/\\\x00") || strings.Contains(name, "..") {
		return ErrNameInvalid
	}
	return nil
}
