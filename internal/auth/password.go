package auth

import "unicode"

const minPasswordLen = 8

// PasswordProblems lists what pw is missing, or nil when it is acceptable.
func PasswordProblems(pw string) []string {
	var upper, lower, digit, special bool
	n := 0
	for _, r := range pw {
		n++
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	var out []string
	if n < minPasswordLen {
		out = append(out, "at least 8 characters")
	}
	if !upper {
		out = append(out, "an uppercase letter")
	}
	if !lower {
		out = append(out, "a lowercase letter")
	}
	if !digit {
		out = append(out, "a digit")
	}
	if !special {
		out = append(out, "a special character")
	}
	return out
}
