package knowledge

import "strings"

type textChunk struct {
	text   string
	offset int
}

// splitIntoChunks splits raw into overlapping windows when it exceeds
// cfg.MaxDocSize runes. window and stride are configurable; stride <
// window produces overlap. Documents at or below the
// limit are returned as a single chunk.
func splitIntoChunks(raw string, cfg Config) []textChunk {
	runes := []rune(raw)
	if len(runes) <= cfg.MaxDocSize {
		return []textChunk{{text: raw, offset: 0}}
	}

	window := cfg.ChunkWindow
	stride := cfg.ChunkStride
	if window <= 0 {
		window = DefaultChunkWindow
	}
	if stride <= 0 || stride > window {
		stride = window
	}

	var chunks []textChunk
	for start := 0; start < len(runes); start += stride {
		end := start + window
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, textChunk{
			text:   string(runes[start:end]),
			offset: start,
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// segmentSections splits markdown on ATX headings ("#", "##", ...) to let
// bestSnippet score individual sections instead of a whole chunk.
func segmentSections(text string) []Section {
	var sections []Section
	lines := strings.Split(text, "\n")

	offset := 0
	var cur *Section
	for _, line := range lines {
		lineLen := len(line) + 1 // account for the stripped newline
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			if cur != nil {
				cur.End = offset
				sections = append(sections, *cur)
			}
			cur = &Section{Heading: strings.TrimLeft(trimmed, "# "), Start: offset}
		}
		offset += lineLen
	}
	if cur != nil {
		cur.End = len(text)
		sections = append(sections, *cur)
	}
	return sections
}
