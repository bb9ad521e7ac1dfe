// Package timezone pins every wall-clock computation to the zone named by APP_TIMEZONE.
//
// Booking slots are entered as a local date plus a local start time, so they are parsed
// here rather than with time.Parse:
//
//	start, err := timezone.Slot("2025-03-14", "09:30")
//
// Timestamps read back from Postgres are converted with ToAppTime before formatting.
// An unknown or empty zone name falls back to UTC.
package timezone
