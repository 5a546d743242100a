package main

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"os"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// verifySecretToken checks the Bot API secret token header against the
// configured secret in constant time. An empty configured secret is
// only acceptable outside production; production startup already
// refuses to run without one.
func verifySecretToken(r *http.Request, secret string) error {
	if secret == "" {
		if os.Getenv("TGRELAY_ENV") == "production" {
			return fmt.Errorf("webhook secret is required in production mode")
		}
		return nil
	}

	provided := r.Header.Get(secretTokenHeader)
	if provided == "" {
		return fmt.Errorf("missing %s header", secretTokenHeader)
	}

	if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
		return fmt.Errorf("secret token mismatch")
	}

	return nil
}
