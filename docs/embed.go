// Copyright © 2024 The ELPS authors

// Package docs embeds the lox language reference for use by the CLI.
package docs

import (
	_ "embed"
	"sort"
	"strings"
)

//go:embed lang.md
var LangGuide string

const topicPrefix = "### "

// Topic returns the section of the language reference describing name, a
// keyword, native function or value kind.
func Topic(name string) (string, bool) {
	lines := strings.Split(LangGuide, "\n")
	for i, line := range lines {
		if line != topicPrefix+name {
			continue
		}
		end := i + 1
		for end < len(lines) && !strings.HasPrefix(lines[end], "#") {
			end++
		}
		return strings.TrimSpace(strings.Join(lines[i+1:end], "\n")), true
	}
	return "", false
}

// Topics returns the names accepted by Topic in sorted order.
func Topics() []string {
	var names []string
	for _, line := range strings.Split(LangGuide, "\n") {
		if strings.HasPrefix(line, topicPrefix) {
			names = append(names, strings.TrimPrefix(line, topicPrefix))
		}
	}
	sort.Strings(names)
	return names
}
