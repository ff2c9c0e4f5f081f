package captions

// Source identifies how a caption track was authored.
type Source string

const (
	// SourceUser marks human-authored caption tracks.
	SourceUser Source = "user"
	// SourceAuto marks machine-generated caption tracks.
	SourceAuto Source = "auto"
)

// Cue is one resolved subtitle unit. StartMS never exceeds EndMS, and Text
// is never empty for cues produced by Flatten.
type Cue struct {
	StartMS int64
	EndMS   int64
	Text    string
}
