package captions

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var tag = regexp.MustCompile(`<[^>]*>`)

// Parse reads a WebVTT track. Comment, style and region blocks are skipped, cue settings are ignored,
// markup is stripped and multi-line cue text is joined with newlines. Cues keep their source order.
func Parse(r io.Reader) ([]Cue, error) {
	blocks, err := readBlocks(r)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 || !strings.HasPrefix(blocks[0][0], "WEBVTT") {
		return nil, fmt.Errorf("webvtt: missing header")
	}

	var cues []Cue
	for _, block := range blocks[1:] {
		switch first := block[0]; {
		case strings.HasPrefix(first, "NOTE"), strings.HasPrefix(first, "STYLE"), strings.HasPrefix(first, "REGION"):
			continue
		}

		timing := 0
		if !strings.Contains(block[0], "-->") {
			// cue identifier
			timing = 1
		}
		if timing >= len(block) || !strings.Contains(block[timing], "-->") {
			continue
		}

		start, end, err := parseTiming(block[timing])
		if err != nil {
			return nil, err
		}
		if end <= start {
			continue
		}

		lines := block[timing+1:]
		for i, line := range lines {
			lines[i] = html.UnescapeString(tag.ReplaceAllString(line, ""))
		}

		cues = append(cues, Cue{Start: start, End: end, Text: strings.Join(lines, "\n")})
	}

	return cues, nil
}

// readBlocks splits the input into groups of non-blank lines.
func readBlocks(r io.Reader) ([][]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		blocks  [][]string
		current []string
		first   = true
	)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("webvtt: %w", err)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks, nil
}

func parseTiming(line string) (start, end time.Duration, err error) {
	from, rest, _ := strings.Cut(line, "-->")
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, 0, fmt.Errorf("webvtt: bad timing line %q", line)
	}

	if start, err = parseTimestamp(strings.TrimSpace(from)); err != nil {
		return 0, 0, err
	}
	if end, err = parseTimestamp(fields[0]); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseTimestamp accepts hh:mm:ss.mmm and mm:ss.mmm.
func parseTimestamp(s string) (time.Duration, error) {
	clock, frac, ok := strings.Cut(strings.Replace(s, ",", ".", 1), ".")
	if !ok || len(frac) != 3 {
		return 0, fmt.Errorf("webvtt: bad timestamp %q", s)
	}

	parts := strings.Split(clock, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("webvtt: bad timestamp %q", s)
	}

	var total time.Duration
	units := []time.Duration{time.Hour, time.Minute, time.Second}[3-len(parts):]
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("webvtt: bad timestamp %q", s)
		}
		total += time.Duration(n) * units[i]
	}

	ms, err := strconv.Atoi(frac)
	if err != nil {
		return 0, fmt.Errorf("webvtt: bad timestamp %q", s)
	}
	return total + time.Duration(ms)*time.Millisecond, nil
}
