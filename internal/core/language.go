package core

import (
	"path/filepath"
	"strings"
)

// languageByExtension maps file extensions to the language tags used for
// rule-set selection. Unknown extensions get the empty tag and fall back to
// the generic rule set; they are never excluded for that reason alone.
var languageByExtension = map[string]string{
	".py":    "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".mjs":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".go":    "go",
	".rb":    "ruby",
	".java":  "java",
	".kt":    "kotlin",
	".rs":    "rust",
	".c":     "c",
	".h":     "c",
	".cc":    "cpp",
	".cpp":   "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".php":   "php",
	".swift": "swift",
	".scala": "scala",
	".sh":    "shell",
	".sql":   "sql",
}

// LanguageForPath infers the language tag from a file path's extension.
func LanguageForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return languageByExtension[ext]
}
