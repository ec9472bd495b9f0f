package smoke

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Absent ids are probed this far above the highest id seen.
const absentIDOffset = 1000

// Validation messages the service is expected to return.
const (
	msgMissing = "Missing data for required field."
)

var requiredFields = []string{"position", "name", "hometown", "year", "major"} //nolint:gochecknoglobals // read-only
