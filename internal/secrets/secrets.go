// Package secrets provides the credential store: a YAML secrets file
// layered under environment variables, looked up by namespace and key.
package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

// Store resolves secrets by namespace and key.
type Store interface {
	Get(namespace, key string) (string, error)
}

// SecretNotFoundError means no layer holds the requested secret.
type SecretNotFoundError struct {
	Namespace string
	Key       string
}

func (e *SecretNotFoundError) Error() string {
	return fmt.Sprintf("secret not found: %s.%s", e.Namespace, e.Key)
}

// FileStore reads secrets from a YAML file, with env vars of the form
// TIDES_SECRET_<NAMESPACE>_<KEY> taking precedence. A file like
//
//	willy:
//	  key: "abc123"
//
// resolves Get("willy", "key"); so does TIDES_SECRET_WILLY_KEY.
type FileStore struct {
	k *koanf.Koanf
}

// Open loads the secrets file at path. A missing file is not an error (env
// vars may carry everything); a malformed file is.
func Open(path string) (*FileStore, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("loading secrets file %s: %w", path, err)
			}
		} else {
			log.Debug().Str("path", path).Msg("No secrets file, using environment only")
		}
	}

	envProvider := env.Provider("TIDES_SECRET_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "tides_secret_")
		return strings.Replace(s, "_", ".", 1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading secrets from environment: %w", err)
	}

	return &FileStore{k: k}, nil
}

func (s *FileStore) Get(namespace, key string) (string, error) {
	value := s.k.String(namespace + "." + key)
	if value == "" {
		return "", &SecretNotFoundError{Namespace: namespace, Key: key}
	}
	return value, nil
}

// Static is a fixed in-memory store, used in tests.
type Static map[string]string

func (s Static) Get(namespace, key string) (string, error) {
	if value, ok := s[namespace+"."+key]; ok {
		return value, nil
	}
	return "", &SecretNotFoundError{Namespace: namespace, Key: key}
}
