package storage

import "strings"

// likeEscaper escapes SQLite LIKE wildcards for use with ESCAPE '\'.
// Backslash is replaced first so escapes are not doubled.
var likeEscaper = strings.NewReplacer(
	`\`, `\\`,
	"%", `\%`,
	"_", `\_`,
)

// sanitizeSearchTerm makes user text safe to embed in a LIKE pattern.
func sanitizeSearchTerm(term string) string {
	return likeEscaper.Replace(term)
}
