// Copyright © 2024 The ELPS authors

package docs

import (
	"strings"
	"testing"

	"github.com/luthersystems/lox/parser/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopic(t *testing.T) {
	text, ok := Topic("clock")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(text, "`clock()` returns"), text)
	assert.NotContains(t, text, "Reserved")

	_, ok = Topic("lambda")
	assert.False(t, ok)
}

func TestTopic_LastSection(t *testing.T) {
	text, ok := Topic("super")
	require.True(t, ok)
	assert.Equal(t, "Reserved.  Classes are not supported.", text)
}

func TestTopics_CoverKeywords(t *testing.T) {
	topics := Topics()
	assert.IsIncreasing(t, topics)
	for _, kw := range token.Keywords() {
		assert.Contains(t, topics, kw, "keyword %q has no documentation", kw)
	}
	assert.Contains(t, topics, "clock")
}
