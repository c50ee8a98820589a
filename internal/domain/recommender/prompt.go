package recommender

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Jayesh25-trade/CineVibe/internal/infra/llm/chatgpt"
)

// enumeration matches "1.", "2)", "3 -", "4:", "[5]" style prefixes and bullets.
// ":" and "-" only count when followed by whitespace, so "3:10 to Yuma" survives.
var enumeration = regexp.MustCompile(`^\s*(?:\[?\d{1,2}(?:[.)\]]|\s*[:-](?:\s|$))\s*|[-*•]\s+)`)

// ParseTitles turns the model's free text into candidate titles: one per
// line, enumeration and wrapping quotes stripped, blanks dropped, at most limit.
func ParseTitles(text string, limit int) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	titles := make([]string, 0, len(lines))
	for _, line := range lines {
		line = enumeration.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.Trim(line, `"'“”`))
		if line == "" {
			continue
		}
		titles = append(titles, line)
		if limit > 0 && len(titles) == limit {
			break
		}
	}
	return titles
}

func (s *service) buildMessages(mood string) []chatgpt.Message {
	system := strings.TrimSpace(s.cfg.SystemPrompt)
	if system == "" {
		system = DefaultSystemPrompt
	}
	return []chatgpt.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: fmt.Sprintf(`Find %d movies that match this vibe: "%s"`, s.cfg.TitleCount, mood)},
	}
}
