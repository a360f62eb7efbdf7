// Package classifier decides which alarm, if any, a piece of fetched content raises.
package classifier

import (
	"strings"

	"github.com/aleister1102/certwatch/internal/models"
)

// ThreatPhrases are the warning snippets injected by browsers and ISPs in front of
// blocked pages. They are matched as literal substrings.
var ThreatPhrases = []string{
	"Niebezpieczna strona",
	"Uwaga! Ta strona stanowi zagrożenie",
}

// Classify returns the verdict for content. Rules are evaluated in severity order
// and the first match wins: empty, threat warning, certificate match, clean.
// A nil or empty reference disables the certificate rule.
func Classify(content string, reference *string) models.Classification {
	if strings.TrimSpace(content) == "" {
		return models.ClassificationEmpty
	}

	if ContainsThreatPhrase(content) {
		return models.ClassificationThreatWarning
	}

	if reference != nil && *reference != "" && strings.Contains(content, *reference) {
		return models.ClassificationCertificateMatch
	}

	return models.ClassificationClean
}

// ContainsThreatPhrase reports whether content includes any known warning snippet.
func ContainsThreatPhrase(content string) bool {
	for _, phrase := range ThreatPhrases {
		if strings.Contains(content, phrase) {
			return true
		}
	}
	return false
}
