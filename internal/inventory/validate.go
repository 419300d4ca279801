// Package inventory enforces validation, uniqueness and ordering rules for
// host and alias records on top of the storage layer.
package inventory

import (
	"net/netip"
	"regexp"
	"strings"
)

var (
	macPattern = regexp.MustCompile(`^(?:[0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$|^(?:[0-9A-Fa-f]{2}-){5}[0-9A-Fa-f]{2}$`)

	// Letters, digits, '_' and inner '-' per label, dot separated, optional
	// trailing dot.
	dnsNamePattern = regexp.MustCompile(`^[A-Za-z0-9_](?:[A-Za-z0-9_-]{0,61}[A-Za-z0-9_])?(?:\.[A-Za-z0-9_](?:[A-Za-z0-9_-]{0,61}[A-Za-z0-9_])?)*\.?$`)
)

const maxDNSNameLen = 253

// FieldRule describes how one text field is checked.
type FieldRule struct {
	Field    string
	Required bool
	// Check validates a trimmed, non-empty value. Nil accepts anything.
	Check   func(string) bool
	Message string
}

// Rules is a field-rule table evaluated in order; the first failure wins.
type Rules []FieldRule

// Validate trims every field named in the table in place and checks it.
// fields maps a field name to the value to validate.
func (rs Rules) Validate(fields map[string]*string) error {
	for _, r := range rs {
		p, ok := fields[r.Field]
		if !ok {
			continue
		}
		*p = strings.TrimSpace(*p)

		if *p == "" {
			if r.Required {
				return &ValidationError{Field: r.Field, Message: "is required"}
			}
			continue
		}
		if r.Check != nil && !r.Check(*p) {
			msg := r.Message
			if msg == "" {
				msg = "is invalid"
			}
			return &ValidationError{Field: r.Field, Message: msg}
		}
	}
	return nil
}

// IsIPv4 reports whether s is a dotted-quad IPv4 literal.
func IsIPv4(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is4()
}

// IsIPv6 reports whether s is an IPv6 literal without a zone.
func IsIPv6(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is6() && addr.Zone() == ""
}

// IsMAC reports whether s is six hex pairs separated consistently by ':' or '-'.
func IsMAC(s string) bool {
	return macPattern.MatchString(s)
}

// IsDNSName reports whether s is a relative or fully qualified DNS name that
// can be written verbatim into a zone file.
func IsDNSName(s string) bool {
	return len(strings.TrimSuffix(s, ".")) <= maxDNSNameLen && dnsNamePattern.MatchString(s)
}

// IsAliasTarget reports whether s is a DNS name or an IP literal.
func IsAliasTarget(s string) bool {
	return IsIPv4(s) || IsIPv6(s) || IsDNSName(s)
}

// HostRules validates host records.
var HostRules = Rules{
	{Field: "name", Required: true, Check: IsDNSName, Message: "must be a valid DNS name"},
	{Field: "ipv4", Check: IsIPv4, Message: "must be a valid IPv4 address"},
	{Field: "ipv6", Check: IsIPv6, Message: "must be a valid IPv6 address"},
	{Field: "mac", Check: IsMAC, Message: "must look like AA:BB:CC:DD:EE:FF or AA-BB-CC-DD-EE-FF"},
	{Field: "note"},
}

// AliasRules validates alias records.
var AliasRules = Rules{
	{Field: "name", Required: true, Check: IsDNSName, Message: "must be a valid DNS name"},
	{Field: "target", Required: true, Check: IsAliasTarget, Message: "must be a DNS name or an IP address"},
	{Field: "note"},
}
