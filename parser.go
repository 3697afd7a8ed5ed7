package scholarmail

// AlertParser extracts paper records from one alert email body.
type AlertParser interface {
	// Parse decomposes the HTML body of an alert email into papers in
	// document order. Alert templates drift over time and across
	// locales, so entries with unexpected markup are skipped rather
	// than reported; callers observe a shorter result sequence, never
	// a failed batch.
	Parse(html string) ([]*Paper, error)
}
