package cachedir

// Hash folds s into a 64-bit fingerprint with acc = acc*31 + b over its
// bytes. It only disperses cache file names and is not collision resistant.
func Hash(s string) uint64 {
	var acc uint64
	for i := 0; i < len(s); i++ {
		acc = acc*31 + uint64(s[i])
	}
	return acc
}
