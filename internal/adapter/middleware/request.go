package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reUUID  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

// headerError is a client mistake in the idempotency headers; it maps to 400.
type headerError string

func (e headerError) Error() string { return string(e) }

// requestScope identifies one logical write: the client key bound to the
// method and path it was sent to, plus a digest of the body it carried.
type requestScope struct {
	clientKey string
	storeKey  string
	sentAt    time.Time
	bodySum   string
}

// readScope validates the idempotency headers, buffers the body so the
// handler can still read it, and derives the store key.
func readScope(req *http.Request, now time.Time, maxSkew time.Duration) (requestScope, error) {
	clientKey := strings.TrimSpace(req.Header.Get(HeaderIdempotencyKey))
	switch {
	case clientKey == "":
		return requestScope{}, headerError("missing " + HeaderIdempotencyKey)
	case !validClientKey(clientKey):
		return requestScope{}, headerError("invalid " + HeaderIdempotencyKey + " format")
	}

	sentAt, err := requestTime(req.Header.Get(HeaderRequestAt), now, maxSkew)
	if err != nil {
		return requestScope{}, err
	}

	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	req.Body = io.NopCloser(bytes.NewReader(body))

	return requestScope{
		clientKey: clientKey,
		storeKey:  storeKey(req.Method, req.URL.Path, clientKey),
		sentAt:    sentAt,
		bodySum:   digest(body),
	}, nil
}

// storeKey scopes a client key by method and path, so one key reused on two
// loans is two requests.
func storeKey(method, path, clientKey string) string {
	return "idemp:kasbon:" + strings.ToLower(method) + ":" + path + ":" + clientKey
}

func validClientKey(k string) bool {
	return reUUID.MatchString(k) || reHex32.MatchString(k)
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// requestTime reads X-Request-At as epoch seconds, epoch milliseconds or
// RFC3339 with an explicit zone, and rejects values further than maxSkew from now.
func requestTime(raw string, now time.Time, maxSkew time.Duration) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, headerError("missing " + HeaderRequestAt)
	}

	var at time.Time
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			at = time.UnixMilli(n)
		} else {
			at = time.Unix(n, 0)
		}
	} else if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		at = t
	} else {
		return time.Time{}, headerError(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
	}

	at = at.UTC()
	if d := at.Sub(now); d > maxSkew || d < -maxSkew {
		return time.Time{}, headerError(HeaderRequestAt + " too skewed")
	}
	return at, nil
}
