package sdk

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// signer computes request signatures with a shared secret. The server
// recomputes the same digest from the fields it observes on the wire, so the
// signature must cover exactly what is transmitted and nothing else: no
// header ordering, no random salt.
type signer struct {
	secret []byte
}

// newSigner creates a signer for the given shared secret.
func newSigner(secret string) (*signer, error) {
	if secret == "" {
		return nil, configError("secret key cannot be empty")
	}
	return &signer{secret: []byte(secret)}, nil
}

// sign computes the lowercase hex HMAC-SHA256 digest of
//
//	METHOD "\n" PATH "\n" TIMESTAMP "\n" BODY
//
// where METHOD is upper-case, PATH has no leading slash, TIMESTAMP is the
// decimal whole-second epoch the request carries in X-Timestamp, and BODY is
// the exact JSON bytes transmitted (empty for bodyless requests).
//
// The function is deterministic: identical inputs always produce identical
// signatures.
func (s *signer) sign(method, path, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(method))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(path))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(timestamp))
	mac.Write([]byte{'\n'})
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign computes a request signature without constructing a client. It is the
// same digest the transport sends in X-Signature, exposed so servers and test
// harnesses can verify requests independently.
func Sign(secret, method, path, timestamp string, body []byte) (string, error) {
	s, err := newSigner(secret)
	if err != nil {
		return "", err
	}
	return s.sign(method, path, timestamp, body), nil
}
