package tenant

import (
	"net"
	"strings"
)

// Env is the runtime environment flag the API base is derived with.
type Env string

const (
	EnvDevelopment Env = "development"
	EnvProduction  Env = "production"
)

// ParseEnv maps a configured mode to an Env. Anything but "development" is production.
func ParseEnv(s string) Env {
	if strings.ToLower(strings.TrimSpace(s)) == string(EnvDevelopment) {
		return EnvDevelopment
	}
	return EnvProduction
}

// Mode tells whether the portal serves a school (tenant) or the operator (platform).
type Mode string

const (
	ModeTenant   Mode = "tenant"
	ModePlatform Mode = "platform"
)

const (
	SchoolPath   = "/school"
	PlatformPath = "/platform"

	localhost = "localhost"
)

// reservedLabels are subdomains that never designate a school.
var reservedLabels = map[string]bool{
	"www": true,
	"app": true,
}

// Subdomain returns the tenant label of hostname, or "" when there is none.
//
//	acme.localhost   -> acme
//	localhost        -> ""
//	acme.example.com -> acme
//	example.com      -> ""
func Subdomain(hostname string) string {
	if hostname == "" {
		return ""
	}
	labels := strings.Split(hostname, ".")

	if strings.Contains(hostname, localhost) {
		if labels[0] != localhost {
			return labels[0]
		}
		return ""
	}

	// sub.domain.tld
	if len(labels) >= 3 {
		return labels[0]
	}
	return ""
}

// IsTenantDomain reports whether hostname carries a non-reserved subdomain.
func IsTenantDomain(hostname string) bool {
	sub := Subdomain(hostname)
	return sub != "" && !reservedLabels[sub]
}

// ModeOf decides the routing mode. Development always routes to schools so local
// testing never hits platform-only routes.
func ModeOf(hostname string, env Env) Mode {
	if env == EnvDevelopment || IsTenantDomain(hostname) {
		return ModeTenant
	}
	return ModePlatform
}

// APIBaseURL appends to baseURL the path matching ModeOf(hostname, env).
// Trailing slashes on baseURL are dropped first, so "https://api.example.com/" yields
// "https://api.example.com/school" rather than a double slash.
func APIBaseURL(baseURL, hostname string, env Env) string {
	baseURL = strings.TrimRight(baseURL, "/")
	if ModeOf(hostname, env) == ModeTenant {
		return baseURL + SchoolPath
	}
	return baseURL + PlatformPath
}

// HostnameFromHost turns a request Host (which may carry a port) into a lowercase hostname.
func HostnameFromHost(host string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	} else {
		host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	}
	return strings.ToLower(strings.TrimSuffix(host, "."))
}
