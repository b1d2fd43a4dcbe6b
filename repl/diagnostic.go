// Copyright © 2024 The ELPS authors

package repl

import (
	"io"

	"github.com/luthersystems/lox/diagnostic"
)

// renderError renders an entry's error with source annotations.  Syntax
// errors produce one diagnostic per error.
func renderError(r *diagnostic.Renderer, w io.Writer, err error) {
	_ = r.RenderAll(w, diagnostic.FromError(err))
}
