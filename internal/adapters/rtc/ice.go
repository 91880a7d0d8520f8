package rtc

import (
	"strings"

	"github.com/pion/webrtc/v4"
)

// ClientICEServers returns the servers worth handing to browsers: entries
// without URLs are skipped, TURN entries must carry credentials.
func ClientICEServers(servers []webrtc.ICEServer) []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(servers))
	for _, s := range servers {
		urls := make([]string, 0, len(s.URLs))
		for _, u := range s.URLs {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
		if len(urls) == 0 {
			continue
		}
		if hasTURN(urls) && (s.Username == "" || s.Credential == nil) {
			continue
		}
		s.URLs = urls
		out = append(out, s)
	}
	return out
}

func hasTURN(urls []string) bool {
	for _, u := range urls {
		u = strings.ToLower(u)
		if strings.HasPrefix(u, "turn:") || strings.HasPrefix(u, "turns:") {
			return true
		}
	}
	return false
}
