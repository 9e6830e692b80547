package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// VerifyCallbackSignature validates the hmac parameter of an OAuth callback.
// The canonical message is every query parameter except hmac, sorted by key
// and joined as key=value with &. The signature is the hex-encoded
// HMAC-SHA256 of that message under the app's client secret.
// Returns false on any mismatch or missing input, never an error.
func VerifyCallbackSignature(query url.Values, secret string) bool {
	provided := query.Get("hmac")
	if provided == "" || secret == "" {
		return false
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		if k == "hmac" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+query.Get(k))
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(provided))
}

// VerifyWebhookSignature validates the X-Shopify-Hmac-SHA256 header of a
// webhook delivery. The digest is computed over the raw, unparsed request
// body; parsing and re-serializing does not round-trip byte-for-byte and
// would break verification.
func VerifyWebhookSignature(rawBody []byte, signatureHeader, secret string) bool {
	if signatureHeader == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}
