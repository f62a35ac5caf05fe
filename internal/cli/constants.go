package cli

// Default values for CLI flags and formatted output.
const (
	// DefaultPrefetchDays is the number of days prefetched when --days is not given.
	DefaultPrefetchDays = 7
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
	// MaxTitleLength is the maximum length of a title in tabular output.
	MaxTitleLength = 50
)
