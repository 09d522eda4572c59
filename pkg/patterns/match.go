package patterns

// Match reports whether key matches the LIKE pattern. '%' matches zero or
// more characters, '_' matches exactly one, and a backslash escapes the next
// character. Comparison is case-sensitive and rune-based.
func Match(pattern, key string) bool {
	return like([]rune(pattern), []rune(key))
}

func like(p, s []rune) bool {
	// Iterative wildcard matching with single backtrack point for '%'.
	pi, si := 0, 0
	starP, starS := -1, 0
	for si < len(s) {
		if pi < len(p) {
			switch c := p[pi]; {
			case c == '%':
				starP, starS = pi, si
				pi++
				continue
			case c == '_':
				pi++
				si++
				continue
			case c == '\\' && pi+1 < len(p):
				if p[pi+1] == s[si] {
					pi += 2
					si++
					continue
				}
			case c == s[si]:
				pi++
				si++
				continue
			}
		}
		if starP < 0 {
			return false
		}
		starS++
		si = starS
		pi = starP + 1
	}
	for pi < len(p) && p[pi] == '%' {
		pi++
	}
	return pi == len(p)
}
