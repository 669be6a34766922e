// ABOUTME: Build identity constants
// ABOUTME: Shared by the chiprender and chipplay CLIs
package version

const (
	// Version is the semantic version of this build.
	Version = "0.1.0"

	// Product is the suite name reported by the CLIs.
	Product = "chipsynth"

	// Manufacturer identifies the project.
	Manufacturer = "Chipsynth Project"
)
