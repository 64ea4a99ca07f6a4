// Package device derives a stable device fingerprint for redemption
// confirmations.
package device

import (
	"crypto/sha256"
	"encoding/base64"
	"os"
	"runtime"
	"strings"
)

// Fingerprint returns a stable, non-reversible identifier for this device.
// It hashes coarse host attributes; no hardware serials or user data go in.
func Fingerprint() string {
	host, _ := os.Hostname()
	seed := strings.Join([]string{host, runtime.GOOS, runtime.GOARCH}, "|")
	sum := sha256.Sum256([]byte(seed))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
