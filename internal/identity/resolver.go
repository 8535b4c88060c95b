// Package identity resolves the per-browser client identifier used for
// quota tracking. The identifier travels in a signed, http-only cookie;
// a forged or unsigned cookie is treated the same as an absent one.
package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verifact/verifact-server-go/internal/config"
	"github.com/verifact/verifact-server-go/internal/randx"
)

const suffixLength = 9

// Resolver: reads or mints the client identity cookie.
type Resolver struct {
	secret      string
	cookieName  string
	maxAge      time.Duration
	forceSecure bool
	now         func() time.Time
	rand        *randx.LockedRand
}

// NewResolver: builds a Resolver from configuration.
func NewResolver(cfg config.IdentityConfig) *Resolver {
	name := strings.TrimSpace(cfg.CookieName)
	if name == "" {
		name = "clientId"
	}
	return &Resolver{
		secret:      cfg.CookieSecret,
		cookieName:  name,
		maxAge:      cfg.CookieMaxAge(),
		forceSecure: cfg.ForceSecure,
		now:         time.Now,
		rand:        randx.NewSeeded(),
	}
}

// WithClock: swaps the time source, for tests.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Resolve: returns the client identity for the request. When the cookie
// is absent or its signature does not verify, a fresh identity is minted
// and set on the response.
func (r *Resolver) Resolve(c *gin.Context) string {
	signed, err := c.Cookie(r.cookieName)
	if err == nil && signed != "" {
		if id, ok := Validate(signed, r.secret); ok {
			return id
		}
	}

	id := r.mint()
	r.setCookie(c, Sign(id, r.secret))
	return id
}

// CookieName: the cookie this resolver reads and writes.
func (r *Resolver) CookieName() string {
	return r.cookieName
}

// mint: timestamp in base36 plus a random alphanumeric suffix. Collisions
// are treated as acceptable at this scale.
func (r *Resolver) mint() string {
	return strconv.FormatInt(r.now().UnixMilli(), 36) + r.rand.AlphaNum(suffixLength)
}

func (r *Resolver) setCookie(c *gin.Context, value string) {
	isSecure := c.Request.TLS != nil || r.forceSecure
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(r.cookieName, value, int(r.maxAge.Seconds()), "/", "", isSecure, true)
}

// Sign: appends an HMAC-SHA256 signature. An empty secret leaves the
// value unsigned.
func Sign(id, secret string) string {
	if secret == "" {
		return id
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	signature := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return id + "." + signature
}

// Validate: verifies the signature and returns the bare identity.
func Validate(signed, secret string) (string, bool) {
	if secret == "" {
		return signed, signed != ""
	}
	parts := strings.SplitN(signed, ".", 2)
	if len(parts) != 2 {
		return "", false
	}

	id, providedSig := parts[0], parts[1]
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	expectedSig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(providedSig), []byte(expectedSig)) {
		return "", false
	}
	return id, true
}
