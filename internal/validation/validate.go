package validation

import (
	"fmt"
	"regexp"
	"time"
)

// DateLayout is the scope-key format for all day-scoped resources.
const DateLayout = "2006-01-02"

// DeviceIDPattern matches acceptable device identities. Installations
// generate UUIDs, but the server only requires an opaque URL-safe token so
// older identifier schemes keep working.
var DeviceIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

// ValidateDate checks that a scope date is a real calendar day in
// YYYY-MM-DD form.
func ValidateDate(date string) error {
	if date == "" {
		return fmt.Errorf("date cannot be empty")
	}

	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("date must be in YYYY-MM-DD format")
	}

	return nil
}

// ValidateDeviceID checks that a device identity is a well-formed opaque
// token.
func ValidateDeviceID(deviceID string) error {
	if deviceID == "" {
		return fmt.Errorf("device id cannot be empty")
	}

	if !DeviceIDPattern.MatchString(deviceID) {
		return fmt.Errorf("device id must be 3-64 characters of letters, numbers, hyphen or underscore")
	}

	return nil
}
