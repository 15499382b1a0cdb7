package cmd

// Restricts which commits git log reports beyond the revision range itself.
type LogFilters struct {
	Grep       []string // Commit message patterns, OR-ed together by git
	IgnoreCase bool     // Match Grep patterns case-insensitively
}

// Turn into CLI args we can pass to `git log`
func (f LogFilters) ToArgs() []string {
	args := []string{}

	for _, pattern := range f.Grep {
		args = append(args, "--grep", pattern)
	}

	if len(f.Grep) > 0 {
		args = append(args, "--extended-regexp")

		if f.IgnoreCase {
			args = append(args, "--regexp-ignore-case")
		}
	}

	return args
}
