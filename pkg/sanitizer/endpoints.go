package sanitizer

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// EndpointKind tells a URL apart from a bare IP address
type EndpointKind string

const (
	URLEndpoint EndpointKind = "url"
	IPEndpoint  EndpointKind = "ip"
)

// Endpoint is a hardcoded network location found in text
type Endpoint struct {
	Kind   EndpointKind
	Value  string // matched text
	Host   string // hostname or IP, lower-cased; empty when the URL does not parse
	Line   int    // 1-based
	Column int    // 1-based, in runes
}

// EndpointConfig holds configuration for endpoint detection
type EndpointConfig struct {
	AllowDomains []string // hosts (and their subdomains) that are not reported
}

var (
	urlRegex = regexp.MustCompile(`https?://[^\s<>"'\[\]{}()]+`)
	ipRegex  = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
)

// FindEndpoints returns every http(s) URL and dotted-quad IP literal in content, in
// source order. IP literals inside a URL are reported once, as part of the URL.
func FindEndpoints(content string, config *EndpointConfig) []Endpoint {
	if content == "" {
		return nil
	}

	var allowDomains []string
	if config != nil {
		allowDomains = config.AllowDomains
	}

	var endpoints []Endpoint
	for i, line := range strings.Split(content, "\n") {
		urlSpans := urlRegex.FindAllStringIndex(line, -1)
		var found []Endpoint
		for _, span := range urlSpans {
			found = append(found, newEndpoint(URLEndpoint, line, span, i+1))
		}
		for _, span := range ipRegex.FindAllStringIndex(line, -1) {
			if insideAny(span, urlSpans) {
				continue
			}
			found = append(found, newEndpoint(IPEndpoint, line, span, i+1))
		}
		sortByColumn(found)

		for _, ep := range found {
			if ep.Host != "" && isHostnameAllowed(ep.Host, allowDomains) {
				continue
			}
			endpoints = append(endpoints, ep)
		}
	}
	return endpoints
}

func newEndpoint(kind EndpointKind, line string, span []int, lineNum int) Endpoint {
	value := line[span[0]:span[1]]
	ep := Endpoint{
		Kind:   kind,
		Value:  value,
		Line:   lineNum,
		Column: utf8.RuneCountInString(line[:span[0]]) + 1,
	}
	switch kind {
	case URLEndpoint:
		if parsed, err := url.Parse(value); err == nil {
			ep.Host = strings.ToLower(parsed.Hostname())
		}
	case IPEndpoint:
		ep.Host = value
	}
	return ep
}

func insideAny(span []int, outer [][]int) bool {
	for _, o := range outer {
		if span[0] >= o[0] && span[1] <= o[1] {
			return true
		}
	}
	return false
}

// sortByColumn is an insertion sort; a line holds a handful of matches at most
func sortByColumn(eps []Endpoint) {
	for i := 1; i < len(eps); i++ {
		for j := i; j > 0 && eps[j].Column < eps[j-1].Column; j-- {
			eps[j], eps[j-1] = eps[j-1], eps[j]
		}
	}
}

// isHostnameAllowed checks if a hostname matches any of the allowed domain patterns
func isHostnameAllowed(hostname string, allowedDomains []string) bool {
	hostname = strings.ToLower(hostname)

	for _, allowedDomain := range allowedDomains {
		allowedDomain = strings.ToLower(strings.TrimSpace(allowedDomain))
		if allowedDomain == "" {
			continue
		}

		// Exact match
		if hostname == allowedDomain {
			return true
		}

		// Subdomain match (e.g., "example.com" matches "api.example.com")
		if strings.HasSuffix(hostname, "."+allowedDomain) {
			return true
		}
	}

	return false
}
