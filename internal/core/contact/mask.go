package contact

import "strings"

const maskTail = "***"

// MaskEmail hides most of an address for logs
//
//	user@example.com -> us***@ex***.com
//	ab@example.com   -> ***@ex***.com
//	not-an-email     -> ***
func MaskEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return maskTail
	}
	local, domain := email[:at], email[at+1:]

	name, tld := domain, ""
	if dot := strings.LastIndexByte(domain, '.'); dot >= 0 {
		name, tld = domain[:dot], domain[dot:]
	}
	return maskPart(local) + "@" + maskPart(name) + tld
}

// maskPart keeps the first two characters of parts longer than two
func maskPart(s string) string {
	r := []rune(s)
	if len(r) <= 2 {
		return maskTail
	}
	return string(r[:2]) + maskTail
}
