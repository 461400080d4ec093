// Package validation checks user input before it reaches the IDM server.
//
// Base URLs are validated against private IP ranges and cloud metadata
// endpoints. Private ranges can be allowed with IDM_ALLOW_PRIVATE (any value
// strconv.ParseBool accepts) or SetAllowPrivate(true); metadata endpoints stay
// blocked either way.
package validation

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

var allowPrivate atomic.Bool

var privateNetworks []*net.IPNet

// Resolver looks up host addresses; tests replace it.
var Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
} = &net.Resolver{}

func init() {
	v, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("IDM_ALLOW_PRIVATE")))
	allowPrivate.Store(v)

	privateCIDRs := []string{
		"10.0.0.0/8",      // RFC1918
		"172.16.0.0/12",   // RFC1918
		"192.168.0.0/16",  // RFC1918
		"100.64.0.0/10",   // RFC6598
		"169.254.0.0/16",  // RFC3927
		"192.0.0.0/24",    // RFC6890
		"192.0.2.0/24",    // RFC5737
		"198.18.0.0/15",   // RFC2544
		"198.51.100.0/24", // RFC5737
		"203.0.113.0/24",  // RFC5737
		"240.0.0.0/4",     // RFC1112
		"fc00::/7",        // RFC4193
		"fe80::/10",       // RFC4291
		"ff00::/8",        // RFC4291
		"::1/128",         // RFC4291
		"::/128",          // RFC4291
		"2001:db8::/32",   // RFC3849
	}
	privateNetworks = make([]*net.IPNet, 0, len(privateCIDRs))
	for _, cidr := range privateCIDRs {
		if _, network, err := net.ParseCIDR(cidr); err == nil {
			privateNetworks = append(privateNetworks, network)
		}
	}
}

// SetAllowPrivate enables or disables private and localhost base URLs, for
// IDM servers running on a developer machine or an internal network.
func SetAllowPrivate(enabled bool) {
	allowPrivate.Store(enabled)
}

// AllowPrivateEnabled reports whether private and localhost URLs are allowed.
func AllowPrivateEnabled() bool {
	return allowPrivate.Load()
}

// NormalizeBaseURL trims whitespace and trailing slashes.
func NormalizeBaseURL(rawURL string) string {
	return strings.TrimRight(strings.TrimSpace(rawURL), "/")
}

// ValidateBaseURL checks that an IDM server URL:
//   - uses http or https
//   - has a hostname and no query or fragment
//   - does not point at localhost or a private range unless allowed
//   - never points at a cloud metadata endpoint
func ValidateBaseURL(rawURL string) error {
	rawURL = NormalizeBaseURL(rawURL)
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("URL exceeds maximum length of %d characters", MaxURLLength)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: only http and https are allowed, got %q", parsedURL.Scheme)
	}
	if parsedURL.RawQuery != "" || parsedURL.Fragment != "" {
		return fmt.Errorf("URL must not contain a query or fragment")
	}

	hostname := parsedURL.Hostname()
	if hostname == "" {
		return fmt.Errorf("URL must contain a hostname")
	}
	if !allowPrivate.Load() && isLocalhost(hostname) {
		return fmt.Errorf("localhost URLs are not allowed (set IDM_ALLOW_PRIVATE=1 or pass --allow-private)")
	}
	if isCloudMetadata(hostname) {
		return fmt.Errorf("cloud metadata endpoints are not allowed")
	}

	if ip := net.ParseIP(hostname); ip != nil {
		return validateIPAddress(ip)
	}
	return validateDomainName(hostname)
}

func isLocalhost(hostname string) bool {
	lowercase := strings.ToLower(hostname)
	switch lowercase {
	case "localhost", "127.0.0.1", "::1", "0.0.0.0", "::":
		return true
	}
	return strings.HasSuffix(lowercase, ".localhost")
}

func isCloudMetadata(hostname string) bool {
	lowercase := strings.ToLower(hostname)
	switch lowercase {
	case "169.254.169.254", "metadata.google.internal", "metadata", "instance-data", "fd00:ec2::254":
		return true
	}
	return strings.HasSuffix(lowercase, ".metadata.google.internal")
}

func validateIPAddress(ip net.IP) error {
	if ip.String() == "169.254.169.254" {
		return fmt.Errorf("cloud metadata IP address is not allowed")
	}
	if ip.IsUnspecified() {
		return fmt.Errorf("unspecified IP addresses are not allowed")
	}
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return fmt.Errorf("link-local IP addresses are not allowed")
	}
	if allowPrivate.Load() {
		return nil
	}
	if ip.IsLoopback() {
		return fmt.Errorf("loopback IP addresses are not allowed")
	}
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return fmt.Errorf("private IP addresses are not allowed")
		}
	}
	return nil
}

// validateDomainName resolves hostname and checks every address. A lookup
// failure is not an error so servers that are not reachable yet can be
// configured.
func validateDomainName(hostname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ips, err := Resolver.LookupIP(ctx, "ip", hostname)
	if err != nil {
		return nil
	}
	for _, ip := range ips {
		if err := validateIPAddress(ip); err != nil {
			return fmt.Errorf("domain %q resolves to forbidden IP %s: %w", hostname, ip.String(), err)
		}
	}
	return nil
}
