package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// ComputeSignature derives the HMAC-SHA256 digest for a delivery. The
// signed message is the timestamp string immediately followed by the
// raw request body. The digest is base64 standard encoded.
func ComputeSignature(secret string, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether the presented signature matches the
// expected digest for the payload. Comparison is constant time over the
// decoded bytes. An empty secret or empty signature never verifies, and
// any internal failure reports false rather than an error so callers
// cannot distinguish a forged delivery from a misconfigured secret.
func VerifySignature(secret string, timestamp string, payload []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}

	presented, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(payload)
	expected := mac.Sum(nil)

	if len(presented) != len(expected) {
		return false
	}

	return subtle.ConstantTimeCompare(presented, expected) == 1
}
