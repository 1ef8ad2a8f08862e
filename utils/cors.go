package utils

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// corsMiddleware reflects trusted origins back and short-circuits preflight
// requests. Browsers on untrusted origins get no CORS headers at all.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); TrustedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// TrustedOrigin reports whether an Origin header value belongs to the local
// network this server is meant to be reached from: localhost, RFC1918 and
// link-local addresses, .local mDNS names, and bare single-label LAN
// hostnames. Anything resolvable from the public internet is rejected.
func TrustedOrigin(origin string) bool {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	host := parsed.Hostname()
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
	}

	switch {
	case host == "localhost":
		return true
	case strings.HasSuffix(host, ".local"):
		return true
	case !strings.Contains(host, "."):
		// Bare hostnames only resolve on the LAN.
		return true
	}
	return false
}
