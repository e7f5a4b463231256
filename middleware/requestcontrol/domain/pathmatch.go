package domain

import "strings"

// MatchPath testa um path contra um padrão estilo Ant.
//
//   - `?` casa exatamente um caractere dentro de um segmento
//   - `*` casa qualquer sequência de caracteres dentro de um segmento
//   - `**` casa zero ou mais segmentos inteiros
//
// Segmentos são delimitados por "/" e a comparação é case-sensitive.
func MatchPath(pattern, path string) bool {
	return matchSegments(splitPath(pattern), pattern, splitPath(path), path)
}

// Whitelist guarda os padrões já quebrados em segmentos para a checagem por
// requisição não precisar refazer o split a cada chamada.
type Whitelist struct {
	patterns []compiledPattern
}

type compiledPattern struct {
	raw  string
	segs []string
}

func NewWhitelist(patterns []string) *Whitelist {
	w := &Whitelist{patterns: make([]compiledPattern, 0, len(patterns))}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		w.patterns = append(w.patterns, compiledPattern{raw: p, segs: splitPath(p)})
	}
	return w
}

// Match retorna true se algum padrão casar com o path.
func (w *Whitelist) Match(path string) bool {
	if w == nil || path == "" {
		return false
	}
	segs := splitPath(path)
	for _, p := range w.patterns {
		if matchSegments(p.segs, p.raw, segs, path) {
			return true
		}
	}
	return false
}

func (w *Whitelist) Patterns() []string {
	if w == nil {
		return nil
	}
	out := make([]string, len(w.patterns))
	for i, p := range w.patterns {
		out[i] = p.raw
	}
	return out
}

func splitPath(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '/' })
}

func matchSegments(pat []string, rawPattern string, segs []string, rawPath string) bool {
	// "/a" não casa "a" e vice-versa
	if strings.HasPrefix(rawPattern, "/") != strings.HasPrefix(rawPath, "/") {
		return false
	}
	// barra final no path só casa se o padrão também terminar em "/" ou em "**"
	if strings.HasSuffix(rawPath, "/") && len(segs) > 0 &&
		!strings.HasSuffix(rawPattern, "/") && !strings.HasSuffix(rawPattern, "**") {
		return false
	}
	return matchFrom(pat, segs)
}

func matchFrom(pat, segs []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			for len(pat) > 0 && pat[0] == "**" {
				pat = pat[1:]
			}
			if len(pat) == 0 {
				return true
			}
			for i := 0; i <= len(segs); i++ {
				if matchFrom(pat, segs[i:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 || !matchSegment(pat[0], segs[0]) {
			return false
		}
		pat, segs = pat[1:], segs[1:]
	}
	return len(segs) == 0
}

// matchSegment faz o glob de um único segmento (`*` e `?`) com backtracking linear.
func matchSegment(p, s string) bool {
	px, sx := 0, 0
	starP, starS := -1, 0
	for sx < len(s) {
		switch {
		case px < len(p) && (p[px] == '?' || p[px] == s[sx]):
			px++
			sx++
		case px < len(p) && p[px] == '*':
			starP, starS = px, sx
			px++
		case starP >= 0:
			px = starP + 1
			starS++
			sx = starS
		default:
			return false
		}
	}
	for px < len(p) && p[px] == '*' {
		px++
	}
	return px == len(p)
}
