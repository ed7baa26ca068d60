package util

// Coalesce picks the first setting that is not the zero value, so an explicit
// option wins over one read from a credentials file or the environment.
func Coalesce[T comparable](candidates ...T) T {
	var unset T
	for _, c := range candidates {
		if c != unset {
			return c
		}
	}
	return unset
}
