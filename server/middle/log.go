package middle

import (
	"log"
	"net/http"
	"strings"
)

// LogResponse logs a response to req with the given level. The level is
// padded or cut to five characters so that log lines align.
func LogResponse(level string, req *http.Request, respStatus int, msg string) {
	if len(level) > 5 {
		level = level[0:5]
	}

	for len(level) < 5 {
		level += " "
	}

	// the client's ephemeral port is not useful
	remoteAddrParts := strings.SplitN(req.RemoteAddr, ":", 2)
	remoteIP := remoteAddrParts[0]

	log.Printf("%s %s %s %s: HTTP-%d %s", level, remoteIP, req.Method, req.URL.Path, respStatus, msg)
}
