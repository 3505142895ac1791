package config

// Version system:
// vMAJOR.MINOR.PATCH

// Centralized version control
const (
	// Executible
	Main_version = "v1.1.0"

	// Modular tools
	Benchmark  = "v1.0.1"
	Measure    = "v1.0.0"
	Render     = "v1.1.0" // Formerly "fastqc_mimic" HTML output
	Percentile = "v1.0.0"
)
