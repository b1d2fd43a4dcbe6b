// Copyright © 2018 The ELPS authors

package repl

import (
	"sort"
	"strings"

	"github.com/luthersystems/lox/lox"
	"github.com/luthersystems/lox/parser/token"
)

// symbolCompleter implements readline.AutoCompleter by enumerating global
// names and keywords.
type symbolCompleter struct {
	env *lox.Env
}

func (c *symbolCompleter) Do(line []rune, pos int) ([][]rune, int) {
	// Extract the identifier being typed, backwards from the cursor.
	start := pos
	for start > 0 && isIdentRune(line[start-1]) {
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	candidates := c.collectSymbols(prefix)
	if len(candidates) == 0 {
		return nil, 0
	}

	// Build completions: each entry is the suffix to append.
	result := make([][]rune, 0, len(candidates))
	for _, sym := range candidates {
		suffix := sym[len(prefix):]
		result = append(result, []rune(suffix))
	}
	return result, len(prefix)
}

func (c *symbolCompleter) collectSymbols(prefix string) []string {
	seen := make(map[string]bool)
	var result []string
	add := func(name string) {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	if c.env != nil {
		for _, name := range c.env.Names() {
			add(name)
		}
	}
	for _, kw := range token.Keywords() {
		add(kw)
	}
	sort.Strings(result)
	return result
}

func isIdentRune(c rune) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
