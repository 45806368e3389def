package common

// LowerFirst returns s with its first ASCII letter lowercased ("Length" -> "length").
func LowerFirst(s string) string {
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return s
	}

	return string(s[0]+('a'-'A')) + s[1:]
}
