package service

import (
	"encoding/base64"

	"github.com/zeebo/blake3"
)

// Fingerprint returns a short BLAKE3 digest of a session id, safe to log and
// publish in place of the id itself.
func Fingerprint(sessionID string) string {
	sum := blake3.Sum256([]byte(sessionID))
	return base64.RawURLEncoding.EncodeToString(sum[:16])
}
