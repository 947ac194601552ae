package chunker

import "errors"

// ErrInvalidConfig is returned before any chunking is attempted when the
// window configuration cannot make progress.
var ErrInvalidConfig = errors.New("invalid chunk config: overlap must be smaller than max chars")

// Config controls the chunk windows. MaxChars and OverlapChars count
// runes, matching how the embedding input is measured.
type Config struct {
	MaxChars                  int
	OverlapChars              int
	RespectSentenceBoundaries bool
}

// Draft is a chunk before embedding: its text, the zero-based page range
// its characters came from, and its zero-based position in the document.
type Draft struct {
	Text      string
	PageStart int
	PageEnd   int
	Index     int
}

// Split concatenates the per-page texts and walks the concatenation in
// windows of up to MaxChars runes. Every window after the first starts
// OverlapChars before the previous window's hard MaxChars boundary, so
// window positions stay predictable even when a sentence cut shortened
// the previous window. Empty pages contribute no characters but keep
// their page number for origin tracking.
func Split(pages []string, cfg Config) ([]Draft, error) {
	if cfg.MaxChars <= 0 || cfg.OverlapChars < 0 || cfg.OverlapChars >= cfg.MaxChars {
		return nil, ErrInvalidConfig
	}

	var runes []rune
	var origins []int // origins[i] is the page runes[i] came from
	for pageNum, text := range pages {
		for _, r := range text {
			runes = append(runes, r)
			origins = append(origins, pageNum)
		}
	}
	if len(runes) == 0 {
		return nil, nil
	}

	var drafts []Draft
	start := 0
	index := 0
	for start < len(runes) {
		hardEnd := start + cfg.MaxChars
		last := hardEnd >= len(runes)
		if last {
			hardEnd = len(runes)
		}

		end := hardEnd
		if cfg.RespectSentenceBoundaries && !last {
			end = sentenceCut(runes, start, hardEnd, cfg.OverlapChars)
		}

		drafts = append(drafts, Draft{
			Text:      string(runes[start:end]),
			PageStart: origins[start],
			PageEnd:   origins[end-1],
			Index:     index,
		})
		index++

		if last {
			break
		}
		start = hardEnd - cfg.OverlapChars
	}
	return drafts, nil
}

// sentenceCut looks backwards from the hard boundary for the last sentence
// terminator and cuts just after it. The search never goes below the next
// window's start, so no character can fall between an early cut and the
// following window.
func sentenceCut(runes []rune, start, hardEnd, overlap int) int {
	floor := hardEnd - overlap
	if floor <= start {
		floor = start + 1
	}
	for i := hardEnd - 1; i >= floor; i-- {
		switch runes[i] {
		case '.', '!', '?':
			return i + 1
		}
	}
	return hardEnd
}
