package utils

// Layouts of the timezone-naive values stored on flight schedules
const (
	LOCAL_TIMESTAMP_LAYOUT = "2006-01-02T15:04:05"
	DATE_LAYOUT            = "2006-01-02"
	MINUTE_KEY_LAYOUT      = "200601021504"
)

// Fallback kinds reported when a provider time string is not in the strict format
const (
	FallbackGeneric = "generic"
	FallbackNow     = "now"
)
