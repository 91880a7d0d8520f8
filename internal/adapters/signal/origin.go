package signal

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// OriginChecker builds the upgrade origin check. Requests without an Origin
// header (non-browser clients) always pass. An origin passes when it is listed
// in allowed ("*" allows any), or when sameOrigin is set and its host matches
// the request host. With nothing configured every origin passes.
func OriginChecker(allowed []string, sameOrigin bool) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.ToLower(strings.TrimRight(o, "/"))] = true
	}
	if set["*"] || (len(set) == 0 && !sameOrigin) {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if set[strings.ToLower(origin)] {
			return true
		}
		if sameOrigin {
			if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
				return true
			}
		}
		log.Warn().Str("module", "signal").Str("origin", origin).Msg("ws origin rejected")
		return false
	}
}
