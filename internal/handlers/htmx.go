package handlers

import "net/http"

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" || r.Header.Get("HX-Boosted") == "true"
}

// notifyHTMX asks htmx clients to refresh views listening for event.
func notifyHTMX(w http.ResponseWriter, r *http.Request, event string) {
	if isHTMX(r) {
		w.Header().Set("HX-Trigger", event)
	}
}
