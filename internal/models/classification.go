package models

// Classification is the verdict produced by inspecting fetched content.
type Classification string

const (
	// ClassificationEmpty means the content is blank after trimming whitespace.
	ClassificationEmpty Classification = "empty"
	// ClassificationThreatWarning means the content carries a browser/ISP threat warning.
	ClassificationThreatWarning Classification = "threat_warning"
	// ClassificationCertificateMatch means the reference document was found in the content.
	ClassificationCertificateMatch Classification = "certificate_match"
	// ClassificationClean means none of the alarm rules matched.
	ClassificationClean Classification = "clean"
)

// AllClassifications lists every verdict in precedence order.
var AllClassifications = []Classification{
	ClassificationEmpty,
	ClassificationThreatWarning,
	ClassificationCertificateMatch,
	ClassificationClean,
}

// String returns the classification label.
func (c Classification) String() string {
	return string(c)
}

// IsAlarm reports whether the classification should raise a notification.
func (c Classification) IsAlarm() bool {
	return c != ClassificationClean
}
