package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/hatbox-go/hatbox/pkg/token"
)

// Token source names.
const (
	TokenSourceStatic = "static"
	TokenSourceHKDF   = "hkdf"
	TokenSourceBlake3 = "blake3"
)

// TokenConfig selects how the access token is derived.
type TokenConfig struct {
	// Source is static, hkdf or blake3.
	Source string `yaml:"source" env:"SOURCE"`

	// Static is the token itself for the static source.
	Static string `yaml:"static" env:"STATIC"`

	// Secret is the key material for hkdf and blake3. SecretFile, when
	// set, takes precedence; trailing newlines in the file are ignored.
	Secret     string `yaml:"secret" env:"SECRET"`
	SecretFile string `yaml:"secret_file" env:"SECRET_FILE"`

	// Salt is the HKDF salt.
	Salt string `yaml:"salt" env:"SALT"`

	// Info is the HKDF info or the BLAKE3 derive-key context.
	Info string `yaml:"info" env:"INFO"`
}

func (t TokenConfig) validate() error {
	switch t.Source {
	case TokenSourceStatic:
		_, err := token.NewStatic(t.Static)
		return err
	case TokenSourceHKDF, TokenSourceBlake3:
		if t.Secret == "" && t.SecretFile == "" {
			return fmt.Errorf("%s source: %w", t.Source, token.ErrNoSecret)
		}
		return nil
	default:
		return fmt.Errorf("unknown source %q (want static, hkdf or blake3)", t.Source)
	}
}

// NewSource builds the configured token source.
func (t TokenConfig) NewSource() (token.Source, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	if t.Source == TokenSourceStatic {
		return token.NewStatic(t.Static)
	}

	secret, err := t.secret()
	if err != nil {
		return nil, err
	}
	if t.Source == TokenSourceHKDF {
		return token.HKDF{Secret: secret, Salt: []byte(t.Salt), Info: t.Info}, nil
	}
	return token.Blake3{Secret: secret, Context: t.Info}, nil
}

func (t TokenConfig) secret() ([]byte, error) {
	if t.SecretFile == "" {
		return []byte(t.Secret), nil
	}
	data, err := os.ReadFile(t.SecretFile)
	if err != nil {
		return nil, fmt.Errorf("read secret file: %w", err)
	}
	data = bytes.TrimRight(data, "\r\n")
	if len(data) == 0 {
		return nil, errors.New("secret file is empty")
	}
	return data, nil
}
