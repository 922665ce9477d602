package transcription

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Cue is one timed caption fragment.
type Cue struct {
	Number int
	Start  time.Duration
	End    time.Duration
	Text   string
}

var (
	inlineTagRE = regexp.MustCompile(`<[^>]*>`)
	spaceRE     = regexp.MustCompile(`\s+`)
)

// ParseVTT parses WebVTT content into cues. The header block (WEBVTT plus any
// Kind:/Language: lines), NOTE/STYLE blocks and cue identifiers are skipped.
func ParseVTT(content string) ([]Cue, error) {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	if !strings.HasPrefix(content, "WEBVTT") {
		return nil, fmt.Errorf("invalid VTT format: missing WEBVTT header")
	}

	cues := []Cue{}
	blocks := strings.Split(content, "\n\n")

	// blocks[0] is always the header.
	for _, block := range blocks[1:] {
		lines := strings.Split(strings.Trim(block, "\n"), "\n")
		if len(lines) == 0 || lines[0] == "" {
			continue
		}

		// An optional identifier line may precede the timing line.
		timing := 0
		if !strings.Contains(lines[0], "-->") {
			if len(lines) < 2 || !strings.Contains(lines[1], "-->") {
				continue
			}
			timing = 1
		}

		start, end, err := parseTimingLine(lines[timing])
		if err != nil {
			return nil, err
		}

		text := cleanCueText(strings.Join(lines[timing+1:], " "))
		if text == "" {
			continue
		}

		cues = append(cues, Cue{
			Number: len(cues) + 1,
			Start:  start,
			End:    end,
			Text:   text,
		})
	}

	return cues, nil
}

func parseTimingLine(line string) (time.Duration, time.Duration, error) {
	timestamps := strings.SplitN(line, "-->", 2)

	start, err := parseVTTTimestamp(strings.TrimSpace(timestamps[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start timestamp: %w", err)
	}

	// Cue settings (align:start position:0%) follow the end timestamp.
	endField := strings.Fields(timestamps[1])
	if len(endField) == 0 {
		return 0, 0, fmt.Errorf("invalid end timestamp: empty")
	}
	end, err := parseVTTTimestamp(endField[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end timestamp: %w", err)
	}
	return start, end, nil
}

// cleanCueText drops inline timing and voice tags and collapses whitespace.
func cleanCueText(s string) string {
	s = inlineTagRE.ReplaceAllString(s, "")
	s = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&nbsp;", " ", "&#39;", "'", "&quot;", `"`).Replace(s)
	return strings.TrimSpace(spaceRE.ReplaceAllString(s, " "))
}

// parseVTTTimestamp accepts HH:MM:SS.mmm and MM:SS.mmm.
func parseVTTTimestamp(timestamp string) (time.Duration, error) {
	if !strings.Contains(timestamp, ".") {
		return 0, fmt.Errorf("invalid timestamp format: missing milliseconds")
	}

	parts := strings.Split(timestamp, ":")
	var hours int
	switch len(parts) {
	case 3:
		if len(parts[0]) < 2 {
			return 0, fmt.Errorf("invalid timestamp format: expected HH:MM:SS.mmm")
		}
		h, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, fmt.Errorf("invalid hours: %w", err)
		}
		hours = h
		parts = parts[1:]
	case 2:
	default:
		return 0, fmt.Errorf("invalid timestamp format: expected HH:MM:SS.mmm")
	}

	if len(parts[0]) != 2 {
		return 0, fmt.Errorf("invalid timestamp format: expected two-digit minutes")
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes: %w", err)
	}

	secondParts := strings.Split(parts[1], ".")
	if len(secondParts) != 2 {
		return 0, fmt.Errorf("invalid seconds format: missing milliseconds")
	}

	seconds, err := strconv.Atoi(secondParts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid seconds: %w", err)
	}

	milliseconds, err := strconv.Atoi(secondParts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid milliseconds: %w", err)
	}

	duration := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(milliseconds)*time.Millisecond

	return duration, nil
}

// JoinCues concatenates cue text in start-time order with single spaces. Every cue is
// kept, including one that repeats its predecessor's text.
func JoinCues(cues []Cue) string {
	var sb strings.Builder
	for _, c := range sortedCues(cues) {
		if c.Text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(c.Text)
	}
	return sb.String()
}

// JoinRollingCues joins the cues of an auto-generated track. Those cues roll: each one
// starts with the words that ended the previous cue, so the longest such overlap is
// written once.
func JoinRollingCues(cues []Cue) string {
	var words, prev []string
	for _, c := range sortedCues(cues) {
		cur := strings.Fields(c.Text)
		if len(cur) == 0 {
			continue
		}
		words = append(words, cur[rollingOverlap(prev, cur):]...)
		prev = cur
	}
	return strings.Join(words, " ")
}

// rollingOverlap is the largest k for which the last k words of prev are the first k
// words of cur.
func rollingOverlap(prev, cur []string) int {
	for k := min(len(prev), len(cur)); k > 0; k-- {
		if slices.Equal(prev[len(prev)-k:], cur[:k]) {
			return k
		}
	}
	return 0
}

func sortedCues(cues []Cue) []Cue {
	ordered := make([]Cue, len(cues))
	copy(ordered, cues)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })
	return ordered
}
