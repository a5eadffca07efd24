package images

import (
	"net/url"
	"path"
	"strings"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Normalize makes src absolute relative to the page it was found on:
// "//host/x" takes the page scheme, "/x" the page origin, absolute http(s)
// URLs are kept and anything else is appended to the page link. Other
// schemes (data:, javascript:) are rejected.
func Normalize(src, pageLink string) (string, bool) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", false
	}
	page, err := url.Parse(pageLink)
	if err != nil || page.Host == "" {
		return "", false
	}

	switch {
	case strings.HasPrefix(src, "//"):
		return page.Scheme + ":" + src, true
	case strings.HasPrefix(src, "/"):
		return page.Scheme + "://" + page.Host + src, true
	}

	if u, err := url.Parse(src); err == nil && u.Scheme != "" {
		if IsHTTP(src) {
			return src, true
		}
		return "", false
	}

	if strings.HasSuffix(pageLink, "/") {
		return pageLink + src, true
	}
	return pageLink + "/" + src, true
}

// HasImageExtension reports whether the URL path ends in .jpg, .jpeg or .png.
// Query strings and fragments are ignored.
func HasImageExtension(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return imageExtensions[strings.ToLower(path.Ext(u.Path))]
}

// IsHTTP reports whether raw is an absolute http or https URL with a host.
func IsHTTP(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// dedupe keeps the first occurrence of every URL.
type dedupe struct {
	seen map[string]struct{}
	urls []string
}

func (d *dedupe) add(u string) {
	if d.seen == nil {
		d.seen = make(map[string]struct{})
	}
	if _, ok := d.seen[u]; ok {
		return
	}
	d.seen[u] = struct{}{}
	d.urls = append(d.urls, u)
}
