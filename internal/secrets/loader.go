package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a secret may come from. The first non-empty source
// wins in the order File, Env, Value.
type Source struct {
	// Name is used in error messages.
	Name string
	// Value is an inline secret from configuration or flags.
	Value string
	// Env names an environment variable holding the secret.
	Env string
	// File points to a file containing the secret.
	File string
}

// Load returns the trimmed secret described by src, or an error when no
// source yields a usable value.
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

	if src.Env != "" {
		return "", fmt.Errorf("%s is not configured (set %s)", name, strings.TrimSpace(src.Env))
	}
	return "", fmt.Errorf("%s is not configured", name)
}

// Optional behaves like Load but returns an empty secret instead of an error
// when nothing is configured. Unreadable or empty files are still errors.
func Optional(src Source) (string, error) {
	if strings.TrimSpace(src.File) == "" &&
		strings.TrimSpace(src.Value) == "" &&
		(strings.TrimSpace(src.Env) == "" || strings.TrimSpace(os.Getenv(strings.TrimSpace(src.Env))) == "") {
		return "", nil
	}
	return Load(src)
}
