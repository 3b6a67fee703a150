// Package normalize canonicalizes user-supplied identity fields before they
// touch storage. Every store write goes through these helpers so uniqueness
// checks compare like with like.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace; case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Phone canonicalizes an Ethiopian phone number to E.164 where possible.
//
// Accepted inputs (spaces and dashes stripped first):
//
//	0911234567   -> +251911234567
//	911234567    -> +251911234567
//	+251911234567 -> unchanged
//
// Anything else is returned stripped but otherwise untouched; callers that
// need a deliverable SMS destination must check Deliverable.
func Phone(s string) string {
	p := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(p, "+251"):
		return p
	case strings.HasPrefix(p, "09") && len(p) == 10:
		return "+251" + p[1:]
	case strings.HasPrefix(p, "9") && len(p) == 9:
		return "+251" + p
	}
	return p
}

// Deliverable reports whether a normalized phone number is a valid E.164
// destination for the SMS gateway.
func Deliverable(phone string) bool {
	if !strings.HasPrefix(phone, "+251") || len(phone) != 13 {
		return false
	}
	for _, c := range phone[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
