package model

// Icons shared by the terminal and web presentations.
// Single-width characters keep the terminal columns aligned.
const (
	IconFile     = "▪" // Unused file
	IconDep      = "◆" // Unused dependency
	IconDevDep   = "◇" // Unused dev dependency
	IconExport   = "→" // File with unused exports
	IconResolved = "✓" // Remediation applied
	IconMissing  = "✗" // Target no longer exists
	IconClean    = "★" // Nothing to clean up
)
