package domain

import "strings"

// TornadoCashRouter is the mainnet Tornado Cash router. Any transaction sent
// to this address marks the wallet as having interacted with a mixer.
const TornadoCashRouter = "0x722122df12d4e14e13ac3b6895a86e84145b6967"

// NormalizeAddress lower-cases an address. Two addresses are equal iff their
// normalized forms are equal; all comparisons in the analysis layer go
// through normalized forms.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// SameAddress compares two addresses case-insensitively.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ValidAddress reports whether address is a well-formed 0x-prefixed
// 20-byte hex address.
func ValidAddress(address string) bool {
	address = strings.TrimSpace(address)
	if len(address) != 42 || !strings.HasPrefix(address, "0x") {
		return false
	}
	for _, c := range address[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
