package tracks

import (
	"strings"

	"subtext/internal/captions"
	"subtext/internal/language"
	"subtext/internal/mediameta"
)

// PreferredFormat is the encoding the fetch client can decode natively.
const PreferredFormat = "json3"

// livechatLanguage is a pseudo-language in availability listings, never a
// caption track.
const livechatLanguage = "live_chat"

// FetchRef is the concrete handle for downloading one track.
type FetchRef struct {
	URL    string
	Format string
}

// Ref identifies one fetchable caption track.
type Ref struct {
	VideoID  string
	Language string
	Source   captions.Source
	Fetch    FetchRef
}

// Label renders the track identity used in logs and catalog rows.
func (r Ref) Label() string {
	return r.Language + "/" + string(r.Source)
}

// Policy is the configured language selection policy.
type Policy struct {
	Languages    []string
	AutoFallback bool
}

// Resolve picks the (language, source) pairs to fetch for a video. Uploaded
// tracks win over automatic captions; automatic captions are used only for
// wanted languages without an uploaded track and only when the policy allows
// the fallback. Languages with neither are omitted. Output order follows the
// policy's language order.
func Resolve(videoID string, info *mediameta.Info, policy Policy) []Ref {
	wanted := language.NormalizeList(policy.Languages)
	if len(wanted) == 0 || info == nil {
		return nil
	}

	user := normalizeAvailability(info.Subtitles)
	auto := normalizeAvailability(info.AutomaticCaptions)

	refs := make([]Ref, 0, len(wanted))
	for _, lang := range wanted {
		if fetch, ok := pickEncoding(user[lang]); ok {
			refs = append(refs, Ref{VideoID: videoID, Language: lang, Source: captions.SourceUser, Fetch: fetch})
			continue
		}
		if !policy.AutoFallback {
			continue
		}
		if fetch, ok := pickEncoding(auto[lang]); ok {
			refs = append(refs, Ref{VideoID: videoID, Language: lang, Source: captions.SourceAuto, Fetch: fetch})
		}
	}
	return refs
}

func normalizeAvailability(available map[string][]mediameta.Encoding) map[string][]mediameta.Encoding {
	if len(available) == 0 {
		return nil
	}
	normalized := make(map[string][]mediameta.Encoding, len(available))
	for lang, encodings := range available {
		canonical := language.Normalize(lang)
		if canonical == "" || canonical == livechatLanguage {
			continue
		}
		if len(encodings) == 0 {
			continue
		}
		normalized[canonical] = append(normalized[canonical], encodings...)
	}
	return normalized
}

// pickEncoding chooses the fetch handle for a track: the preferred format
// when present, otherwise any encoding with a usable URL.
func pickEncoding(encodings []mediameta.Encoding) (FetchRef, bool) {
	var fallback *mediameta.Encoding
	for i := range encodings {
		enc := &encodings[i]
		if strings.TrimSpace(enc.URL) == "" {
			continue
		}
		if strings.EqualFold(enc.Ext, PreferredFormat) {
			return FetchRef{URL: enc.URL, Format: PreferredFormat}, true
		}
		if fallback == nil {
			fallback = enc
		}
	}
	if fallback == nil {
		return FetchRef{}, false
	}
	return FetchRef{URL: fallback.URL, Format: strings.ToLower(fallback.Ext)}, true
}
