// Package validation checks user-supplied connection settings before they
// are stored in a profile or used to build a client.
package validation

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
)

var (
	endpointKeyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	profileNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)
)

// Metadata services are never valid API hosts.
var cloudMetadataHosts = map[string]struct{}{
	"169.254.169.254":          {},
	"fd00:ec2::254":            {},
	"metadata.google.internal": {},
	"metadata.goog":            {},
	"100.100.100.200":          {},
}

// ValidateAPIURL checks that rawURL is an absolute http(s) URL with a host,
// carries no embedded credentials and does not target a cloud metadata
// endpoint. Plain http is only accepted for loopback hosts.
func ValidateAPIURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: only http and https are allowed, got %q", parsed.Scheme)
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return fmt.Errorf("URL must contain a hostname")
	}
	if parsed.User != nil {
		return fmt.Errorf("URL must not contain credentials")
	}
	if isCloudMetadata(hostname) {
		return fmt.Errorf("cloud metadata endpoints are not allowed")
	}
	if parsed.Scheme == "http" && !isLoopback(hostname) {
		return fmt.Errorf("plain http is only allowed for localhost, use https for %s", hostname)
	}
	return nil
}

// ValidateEndpointKey checks that key can be appended to the base API URL
// as a single path segment.
func ValidateEndpointKey(key string) error {
	if !endpointKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid endpoint key %q: use letters, digits, '.', '_' or '-'", key)
	}
	return nil
}

// ValidateProfileName checks a keyring profile name.
func ValidateProfileName(name string) error {
	if !profileNamePattern.MatchString(name) {
		return fmt.Errorf("invalid profile name %q: use up to 64 letters, digits, '.', '_' or '-'", name)
	}
	return nil
}

func isLoopback(hostname string) bool {
	hostname = strings.ToLower(hostname)
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}

func isCloudMetadata(hostname string) bool {
	_, ok := cloudMetadataHosts[strings.ToLower(strings.TrimSuffix(hostname, "."))]
	return ok
}
