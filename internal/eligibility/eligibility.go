// Package eligibility decides which email addresses may use the directory.
package eligibility

import "strings"

// Filter admits addresses of a single institutional domain.
type Filter struct {
	Domain string
}

// New returns a filter for domain (case-insensitive).
func New(domain string) Filter {
	return Filter{Domain: strings.ToLower(strings.TrimSpace(domain))}
}

// Allowed reports whether email has exactly one "@", the configured domain
// after it, and at least one ASCII letter before it. Numeric-only local parts
// (student roll numbers) are rejected.
func (f Filter) Allowed(email string) bool {
	e := strings.ToLower(strings.TrimSpace(email))
	if strings.Count(e, "@") != 1 {
		return false
	}
	at := strings.IndexByte(e, '@')
	local, domain := e[:at], e[at+1:]
	if f.Domain == "" || domain != f.Domain {
		return false
	}
	for i := 0; i < len(local); i++ {
		if local[i] >= 'a' && local[i] <= 'z' {
			return true
		}
	}
	return false
}

// SignInMessage is shown when sign-up or sign-in is attempted with an
// ineligible address.
func (f Filter) SignInMessage() string {
	return "Only faculty/staff @" + f.Domain + " accounts are eligible. Numeric student IDs are not yet supported."
}

// ResetMessage is shown when a password reset is requested for an
// ineligible address.
func (f Filter) ResetMessage() string {
	return "Password reset is restricted to eligible @" + f.Domain + " accounts."
}

// Username is the part of email before the "@".
func Username(email string) string {
	if at := strings.IndexByte(email, '@'); at >= 0 {
		return email[:at]
	}
	return email
}
