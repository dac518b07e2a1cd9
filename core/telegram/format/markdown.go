// Package format escapes user supplied text for Telegram parse modes.
package format

import "strings"

var v1Escaper = strings.NewReplacer(`_`, `\_`, `*`, `\*`, "`", "\\`", `[`, `\[`)

// MD escapes text for legacy Markdown.
func MD(text string) string {
	return v1Escaper.Replace(text)
}
