package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is returned when no source yields a value.
var ErrNotConfigured = errors.New("not configured")

// Source describes where a secret may come from. File wins over Env, which
// wins over Value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value provided via configuration or flags.
	Value string
	// File points to a file containing the secret value.
	File string
	// Env names an environment variable holding the secret value.
	Env string
}

// Load returns the trimmed secret described by src.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}

		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
			return secret, nil
		}
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	return "", fmt.Errorf("%s is %w", name, ErrNotConfigured)
}

// LoadOptional is Load for secrets that may legitimately be absent.
func LoadOptional(src Source) (string, error) {
	secret, err := Load(src)
	if errors.Is(err, ErrNotConfigured) {
		return "", nil
	}
	return secret, err
}
