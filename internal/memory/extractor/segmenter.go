package extractor

import (
	"regexp"
	"strings"
)

// Segment is one attributed span of the transcript.
type Segment struct {
	Speaker string
	Text    string
}

// A segment boundary falls at the end of a question or once a turn
// exceeds this many characters.
const maxSegmentLen = 300

var (
	speakerTurnRe = regexp.MustCompile(`(?m)^([A-Z][\w .'-]{0,40}):[ \t]*`)
	sentenceEndRe = regexp.MustCompile(`[.!?]+\s+`)
)

// SegmentTranscript splits a transcript into speaker-attributed
// segments. Turns are detected by "Name:" line prefixes; a turn splits
// further at question marks and at the length bound so one rambling
// monologue does not become a single chunk. Transcripts without speaker
// prefixes fall back to paragraph splitting with an empty speaker.
func SegmentTranscript(transcript string) []Segment {
	turns := speakerTurnRe.FindAllStringSubmatchIndex(transcript, -1)
	if len(turns) == 0 {
		return paragraphSegments(transcript)
	}

	var segments []Segment
	for i, turn := range turns {
		end := len(transcript)
		if i+1 < len(turns) {
			end = turns[i+1][0]
		}
		speaker := transcript[turn[2]:turn[3]]
		text := strings.TrimSpace(transcript[turn[1]:end])
		for _, part := range splitTurn(text) {
			segments = append(segments, Segment{Speaker: speaker, Text: part})
		}
	}
	return segments
}

// splitTurn breaks one speaker turn at segment boundaries: after a
// question, or once the accumulated text passes the length bound.
func splitTurn(text string) []string {
	sentences := splitSentences(text)
	var parts []string
	var current strings.Builder
	for _, sentence := range sentences {
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
		if strings.HasSuffix(sentence, "?") || current.Len() > maxSegmentLen {
			parts = append(parts, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// splitSentences cuts text after sentence-final punctuation, keeping
// the punctuation with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEndRe.FindAllStringIndex(text, -1) {
		// loc[0] is where the punctuation begins; keep it, drop the space.
		endPunct := loc[0]
		for endPunct < loc[1] && strings.ContainsRune(".!?", rune(text[endPunct])) {
			endPunct++
		}
		if s := strings.TrimSpace(text[start:endPunct]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func paragraphSegments(transcript string) []Segment {
	var segments []Segment
	for _, p := range strings.Split(transcript, "\n\n") {
		if text := strings.TrimSpace(p); text != "" {
			segments = append(segments, Segment{Text: text})
		}
	}
	return segments
}
