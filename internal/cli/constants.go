package cli

const (
	// TabWidth is the padding between columns in tabular output.
	TabWidth = 2
	// NoValue is printed for empty cells.
	NoValue = "-"
)
