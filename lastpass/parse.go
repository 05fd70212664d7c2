// Copyright 2019 the Drone Authors. All rights reserved.
// Use of this source code is governed by the Blue Oak Model License
// that can be found in the LICENSE file.

package lastpass

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// multipleMatchesHeader precedes the entry lines when lpass cannot
// collapse a lookup to a single account.
const multipleMatchesHeader = "Multiple matches found"

var (
	siteLine    = regexp.MustCompile(`^(.*)\[id: (\d+)\]\s*$`)
	ampReplacer = strings.NewReplacer("&", "&amp;")
)

// responseParser turns raw search output into summaries.
type responseParser interface {
	parse(query, output string) []EntrySummary
}

// selectParser probes the output and returns the strategy that can read it.
func selectParser(output string, logger logrus.FieldLogger) responseParser {
	trimmed := bytes.TrimSpace([]byte(output))
	if len(trimmed) > 0 && trimmed[0] == '[' && json.Valid(trimmed) {
		return &jsonParser{logger: logger}
	}
	return &textParser{logger: logger}
}

// ParseSearchOutput reads lpass search output of either shape.
func ParseSearchOutput(query, output string, logger logrus.FieldLogger) []EntrySummary {
	if logger == nil {
		logger = logrus.New()
	}
	return selectParser(output, logger).parse(query, output)
}

// jsonParser reads a JSON array of accounts. lpass matches any query
// token, so entries are narrowed to names containing every token.
type jsonParser struct {
	logger logrus.FieldLogger
}

func (p *jsonParser) parse(query, output string) []EntrySummary {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(output), &raw); err != nil {
		p.logger.WithError(err).Warn("cannot decode lpass json output")
		return nil
	}
	tokens := strings.Fields(strings.ToLower(query))
	summaries := make([]EntrySummary, 0, len(raw))
	for i, msg := range raw {
		var entry jsonEntry
		if err := json.Unmarshal(msg, &entry); err != nil {
			p.logger.WithError(err).WithField("index", i).Warn("skipping malformed lpass entry")
			continue
		}
		if entry.ID == "" {
			p.logger.WithField("index", i).Warn("skipping lpass entry without id")
			continue
		}
		if !containsAll(strings.ToLower(entry.Name), tokens) {
			continue
		}
		summaries = append(summaries, EntrySummary{
			ID:     entry.ID,
			Name:   EscapeName(entry.Name),
			Folder: entry.Group,
		})
	}
	return summaries
}

// textParser reads the line oriented listing lpass prints on multiple
// matches: "<folder path>/<site name> [id: <digits>]".
type textParser struct {
	logger logrus.FieldLogger
}

func (p *textParser) parse(_, output string) []EntrySummary {
	var summaries []EntrySummary
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, multipleMatchesHeader) {
			continue
		}
		summary, ok := parseSiteLine(line)
		if !ok {
			p.logger.WithField("line", line).Warn("skipping unparsable lpass line")
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func parseSiteLine(line string) (EntrySummary, bool) {
	parts := strings.Split(line, "/")
	site := parts[len(parts)-1]
	m := siteLine.FindStringSubmatch(site)
	if m == nil {
		return EntrySummary{}, false
	}
	return EntrySummary{
		ID:     m[2],
		Name:   m[1],
		Folder: strings.Join(parts[:len(parts)-1], "/"),
	}, true
}

func containsAll(name string, tokens []string) bool {
	for _, token := range tokens {
		if !strings.Contains(name, token) {
			return false
		}
	}
	return true
}

// EscapeName escapes ampersands for markup rendering.
func EscapeName(name string) string {
	return ampReplacer.Replace(name)
}
