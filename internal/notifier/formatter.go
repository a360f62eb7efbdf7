package notifier

import (
	"fmt"
	"unicode/utf8"

	"github.com/aleister1102/certwatch/internal/models"
)

// AlertHeader opens every classification alert.
const AlertHeader = "!! CERT !!"

const threatExplanation = "" +
	"Niebezpieczna strona\n" +
	"The browser reports that attackers on this site may try to trick visitors into installing " +
	"software or revealing passwords, phone numbers or credit card numbers.\n\n" +
	"Uwaga! Ta strona stanowi zagrożenie\n" +
	"The internet provider blocked this page because it may phish for personal data, bank " +
	"credentials or social media logins."

// FormatAlert renders the message sent when a target enters an alarm state.
// Clean has no alert and yields an empty string.
func FormatAlert(classification models.Classification, target models.Target) string {
	switch classification {
	case models.ClassificationEmpty:
		return fmt.Sprintf("%s\nPage %s is empty (it has no content)!", AlertHeader, target)
	case models.ClassificationThreatWarning:
		return fmt.Sprintf("%s\nPage %s shows a warning:\n\n%s", AlertHeader, target, threatExplanation)
	case models.ClassificationCertificateMatch:
		return fmt.Sprintf("%s\nPage %s contains the certificate.", AlertHeader, target)
	default:
		return ""
	}
}

// FormatFetchError renders the message sent every cycle a target cannot be fetched.
func FormatFetchError(err *models.FetchError) string {
	switch err.Kind {
	case models.FetchErrorNotFound:
		return fmt.Sprintf("File %s was not found.", err.Target)
	case models.FetchErrorReadFailure:
		return fmt.Sprintf("Error reading file %s: %s", err.Target, err.Detail)
	default:
		return fmt.Sprintf("Error fetching %s: %s", err.Target, err.Detail)
	}
}

// truncate cuts s to at most max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
