package internal

import "time"

const (
	// TestUUID is the proximity uuid used across tests
	TestUUID = "2f234454-cf6d-4a0f-adf2-f4911ba9ffa6"
	// TestIdentifier is the region identifier used across tests
	TestIdentifier = "com.example.beacon"
)

// StartArguments returns the arguments of a valid start command as a JSON decoder would
// produce them
func StartArguments() map[string]interface{} {
	return map[string]interface{}{
		"uuid":              TestUUID,
		"identifier":        TestIdentifier,
		"majorId":           float64(1),
		"minorId":           float64(100),
		"transmissionPower": float64(-59),
		"advertiseMode":     float64(2),
		"extraData":         []interface{}{float64(1), float64(2)},
	}
}

// WaitFor polls cond until it holds or d elapses
func WaitFor(cond func() bool, d time.Duration) bool {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond * 5)
	}
	return cond()
}
