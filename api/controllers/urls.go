package controllers

import (
	"fmt"
	"net/http"
	"strings"
)

// resourceURL builds an absolute URL for path on the host that served r,
// honouring X-Forwarded-Proto from a fronting proxy.
func resourceURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); proto != "" {
		scheme = strings.ToLower(strings.Split(proto, ",")[0])
	}
	return fmt.Sprintf("%s://%s%s", scheme, r.Host, path)
}

func shopcartURL(r *http.Request, id int) string {
	return resourceURL(r, fmt.Sprintf("/shopcarts/%d", id))
}

func itemURL(r *http.Request, sid, itemID int) string {
	return resourceURL(r, fmt.Sprintf("/shopcarts/%d/items/%d", sid, itemID))
}
