package configs

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/gorilla/securecookie"
)

type SessionKeys struct {
	AuthKey []byte
	EncKey  []byte
}

func LoadSessionKeys(env ENV) (*SessionKeys, error) {
	if env.AppAuthKey == "" {
		return nil, fmt.Errorf("APP_AUTH_KEY environment variable not set")
	}
	if env.AppEncKey == "" {
		return nil, fmt.Errorf("APP_ENC_KEY environment variable not set")
	}

	authKey, err := base64.URLEncoding.DecodeString(env.AppAuthKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode APP_AUTH_KEY from Base64: %w", err)
	}
	encKey, err := base64.URLEncoding.DecodeString(env.AppEncKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode APP_ENC_KEY from Base64: %w", err)
	}

	if len(encKey) != 16 && len(encKey) != 24 && len(encKey) != 32 {
		return nil, fmt.Errorf("APP_ENC_KEY has invalid length %d after decoding, must be 16, 24 or 32 bytes", len(encKey))
	}

	return &SessionKeys{AuthKey: authKey, EncKey: encKey}, nil
}

// CSRFAuthKey decodes CSRF_KEY. An empty key disables CSRF protection.
func CSRFAuthKey(env ENV) ([]byte, error) {
	if env.CSRFKey == "" {
		return nil, nil
	}
	key, err := base64.URLEncoding.DecodeString(env.CSRFKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode CSRF_KEY from Base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("CSRF_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// GenerateAndPrintSessionKeys writes fresh keys to out and to .env.new_keys.
func GenerateAndPrintSessionKeys(out io.Writer) error {
	authKey := securecookie.GenerateRandomKey(64)
	if authKey == nil {
		return fmt.Errorf("could not generate authentication key")
	}
	encKey := securecookie.GenerateRandomKey(32)
	if encKey == nil {
		return fmt.Errorf("could not generate encryption key")
	}
	csrfKey := securecookie.GenerateRandomKey(32)
	if csrfKey == nil {
		return fmt.Errorf("could not generate csrf key")
	}

	lines := fmt.Sprintf("APP_AUTH_KEY=%s\nAPP_ENC_KEY=%s\nCSRF_KEY=%s\n",
		base64.URLEncoding.EncodeToString(authKey),
		base64.URLEncoding.EncodeToString(encKey),
		base64.URLEncoding.EncodeToString(csrfKey),
	)

	if _, err := fmt.Fprint(out, lines); err != nil {
		return err
	}

	envFilePath := ".env.new_keys"
	if err := os.WriteFile(envFilePath, []byte(lines), 0o600); err != nil {
		return fmt.Errorf("failed to write keys to file %s: %w", envFilePath, err)
	}
	fmt.Fprintf(out, "keys written to %s, copy them into .env\n", envFilePath)
	return nil
}
