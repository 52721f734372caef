package chunk

import "strings"

// splitBySeparator splits text on sep, reattaching sep to the end of every
// piece except the last so that concatenating the result reproduces text
// exactly. An empty sep splits into individual runes.
func splitBySeparator(text, sep string) []string {
	if sep == "" {
		runes := []rune(text)
		out := make([]string, len(runes))
		for i, r := range runes {
			out[i] = string(r)
		}
		return out
	}

	raw := strings.Split(text, sep)
	out := make([]string, 0, len(raw))
	for i, piece := range raw {
		if i < len(raw)-1 {
			out = append(out, piece+sep)
		} else if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

// recursiveSplit implements the spec's separator-priority splitter: for each
// candidate separator, split the text; any resulting fragment longer than
// targetSize recurses with the remaining separators, otherwise the fragment
// is emitted as-is for the merge pass.
func recursiveSplit(text string, separators []string, targetSize int) []string {
	if len(text) <= targetSize || len(separators) == 0 {
		return []string{text}
	}

	sep := separators[0]
	rest := separators[1:]

	var out []string
	for _, piece := range splitBySeparator(text, sep) {
		if len(piece) > targetSize && len(rest) > 0 {
			out = append(out, recursiveSplit(piece, rest, targetSize)...)
		} else {
			out = append(out, piece)
		}
	}
	return out
}

// mergeWithOverlap greedily merges adjacent fragments while the merged
// length stays within targetSize, then emits the merge. Each new merge after
// the first is seeded with the last overlap characters of the previous
// emission (shortened further when needed so carry plus the next fragment
// still fits targetSize), clipped back to the nearest whitespace boundary so
// merges never start mid-word. A single fragment longer than targetSize is
// emitted whole.
func mergeWithOverlap(fragments []string, targetSize, overlap int) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, current.String())
	}

	for _, frag := range fragments {
		if current.Len() > 0 && current.Len()+len(frag) > targetSize {
			flush()
			carry := overlapSuffix(current.String(), min(overlap, targetSize-len(frag)))
			current.Reset()
			current.WriteString(carry)
		}
		current.WriteString(frag)
	}
	flush()

	return chunks
}

// overlapSuffix returns the trailing portion of s to carry forward as the
// prefix of the next chunk, clipped to the nearest preceding whitespace
// boundary so the carried text starts on a word boundary rather than
// mid-word.
func overlapSuffix(s string, overlap int) string {
	if overlap <= 0 || s == "" {
		return ""
	}
	if len(s) <= overlap {
		return s
	}

	tail := s[len(s)-overlap:]
	if idx := strings.IndexAny(tail, " \n\t"); idx >= 0 {
		return tail[idx+1:]
	}
	return tail
}
