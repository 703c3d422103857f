package scoring

import (
	"encoding/json"
	"regexp"
	"strings"
)

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSONObject recovers a JSON object from model output. Models often
// wrap JSON in markdown fences, prefix it with "json", or surround it with
// prose; each of those is peeled off before giving up.
func extractJSONObject(raw string) (string, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.Trim(cleaned, "` \n\r\t")
	if len(cleaned) >= 4 && strings.EqualFold(cleaned[:4], "json") {
		cleaned = strings.TrimSpace(cleaned[4:])
	}
	if isJSONObject(cleaned) {
		return cleaned, true
	}

	if match := jsonObjectPattern.FindString(raw); match != "" && isJSONObject(match) {
		return match, true
	}
	return "", false
}

func isJSONObject(s string) bool {
	return strings.HasPrefix(s, "{") && json.Valid([]byte(s))
}
