package captions

import (
	"strconv"
	"strings"

	"subtext/internal/timecode"
)

// FormatVTT renders cues as a complete WebVTT document. The header names the
// format, kind, and language; each cue block carries a 1-based sequence
// number, a timing line, and the cue text. An empty cue sequence renders the
// header alone. The result always ends with a single newline.
func FormatVTT(cues []Cue, language string) string {
	var b strings.Builder
	b.Grow(64 + len(cues)*48)
	b.WriteString("WEBVTT\nKind: captions\nLanguage: ")
	b.WriteString(language)
	for i, cue := range cues {
		b.WriteString("\n\n")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte('\n')
		b.WriteString(timecode.EncodeMillis(cue.StartMS))
		b.WriteString(" --> ")
		b.WriteString(timecode.EncodeMillis(cue.EndMS))
		b.WriteByte('\n')
		b.WriteString(cue.Text)
	}
	b.WriteByte('\n')
	return b.String()
}
