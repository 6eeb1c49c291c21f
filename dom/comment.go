package dom

import (
	"regexp"

	"golang.org/x/net/html"
)

var commentCloserRe = regexp.MustCompile(`--(&(amp;)*gt;|>)`)

// DecodeComment converts a stored comment body back to the form it has in
// source: entities are decoded, then anything that would close the comment
// early is re-escaped.
func DecodeComment(data string) string {
	s := html.UnescapeString(data)
	return commentCloserRe.ReplaceAllStringFunc(s, func(m string) string {
		if m == "-->" {
			return "--&gt;"
		}
		return "--&amp;" + m[3:]
	})
}

// DecodedCommentLength is the source length of a comment including "<!--" and "-->".
func DecodedCommentLength(data string) int {
	return len(DecodeComment(data)) + 7
}
