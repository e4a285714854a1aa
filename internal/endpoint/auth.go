package endpoint

import (
	"crypto/subtle"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/rajnandan1/kener-sub002/internal/config"
	"github.com/rajnandan1/kener-sub002/internal/kenererr"
	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

// WithAuth guards the ingestion routes with a bearer-token check and
// an optional source-IP allowlist. Auth runs before any payload
// validation; both failures answer 401.
//
// An empty configured secret disables the token check. The server
// refuses to start in that state unless allowInsecureWebhooks is set
// in the configuration.
func WithAuth(site *config.Site, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := checkSource(site.AllowedIPs, r.RemoteAddr); err != nil {
			writeError(w, err, http.StatusUnauthorized)
			return
		}
		if err := checkToken(site.WebhookSecret, r.Header.Get("Authorization")); err != nil {
			writeError(w, err, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func checkToken(secret, header string) error {
	if secret == "" {
		return nil
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return kenererr.New(api.ErrAuth, nil, "authorization header missing or malformed")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
		return kenererr.New(api.ErrAuth, nil, "invalid token")
	}
	return nil
}

func checkSource(allowed []string, remoteAddr string) error {
	if len(allowed) == 0 {
		return nil
	}

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return kenererr.New(api.ErrAuth, err, "unrecognized source address")
	}

	for _, entry := range allowed {
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			if prefix.Contains(addr) {
				return nil
			}
			continue
		}
		if allowedAddr, err := netip.ParseAddr(entry); err == nil && allowedAddr == addr {
			return nil
		}
	}

	return kenererr.New(api.ErrAuth, nil, "source address not allowed")
}
