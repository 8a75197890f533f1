package monitor

// thermalTiers maps temperature floors to status labels, hottest
// first.
var thermalTiers = []struct {
	floor float64
	label string
}{
	{100, "critical"},
	{90, "very hot"},
	{80, "overheated"},
	{75, "stressed"},
	{70, "very warm"},
	{60, "warm"},
	{50, "comfortable"},
	{40, "cool"},
	{30, "very cool"},
	{20, "chilly"},
}

// ThermalStatus buckets a temperature into a display label.
func ThermalStatus(tempC float64) string {
	for _, tier := range thermalTiers {
		if tempC >= tier.floor {
			return tier.label
		}
	}

	return "cold"
}
