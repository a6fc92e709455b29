package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"code.sajari.com/docconv"
)

var (
	spaceRunRe  = regexp.MustCompile(`\s+`)
	blankRunsRe = regexp.MustCompile(`\n\n\n+`)
)

// CleanText normalizes resume text while keeping its line structure.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := blankRunsRe.ReplaceAllString(strings.Join(cleaned, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine trims trailing whitespace and collapses inner runs of spaces,
// keeping leading indentation and bullet markers.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}
	indent := len(line) - len(trimmed)
	if isBulletLine(trimmed) {
		return strings.Repeat(" ", indent) + trimmed
	}
	return strings.Repeat(" ", indent) + spaceRunRe.ReplaceAllString(trimmed, " ")
}

func isBulletLine(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") ||
		strings.HasPrefix(line, "• ") || strings.HasPrefix(line, "· ")
}

// ExtractText returns the plain text of a resume file. Office and PDF formats
// go through docconv; anything else is read as UTF-8 text.
func ExtractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx", ".doc", ".rtf", ".odt":
		res, err := docconv.ConvertPath(path)
		if err != nil {
			return "", fmt.Errorf("failed to parse document %s: %w", path, err)
		}
		return res.Body, nil
	default:
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("file not found: %w", err)
			}
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(content), nil
	}
}
