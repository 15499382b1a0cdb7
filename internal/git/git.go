/*
* Wraps access to data needed from Git.
*
* We invoke Git directly as a subprocess and parse the output rather than using
* git2go/libgit2.
 */
package git

import (
	"fmt"
	"strings"

	"github.com/sinclairtarget/git-tagstats/internal/git/cmd"
)

type LogFilters = cmd.LogFilters

type Commit struct {
	Hash        string
	ShortHash   string
	AuthorName  string
	AuthorEmail string
	Subject     string
	FileDiffs   []FileDiff
	BadStats    []StatError // Numstat lines we could not make sense of
}

func (c Commit) Name() string {
	if c.ShortHash != "" {
		return c.ShortHash
	} else if c.Hash != "" {
		return c.Hash
	} else {
		return "unknown"
	}
}

func (c Commit) String() string {
	return fmt.Sprintf(
		"{ hash:%s author:%s <%s> subject:%s }",
		c.Name(),
		c.AuthorName,
		c.AuthorEmail,
		c.Subject,
	)
}

// A file that was changed in a Commit.
type FileDiff struct {
	Path         string // Path after the change
	OldPath      string // Empty unless the file was renamed
	LinesAdded   int
	LinesRemoved int
	IsBinary     bool // git reports "-" for both counts on binary files
}

func (d FileDiff) String() string {
	return fmt.Sprintf(
		"{ path:\"%s\" old:\"%s\" added:%d removed:%d binary:%v }",
		d.Path,
		d.OldPath,
		d.LinesAdded,
		d.LinesRemoved,
		d.IsBinary,
	)
}

// A one-line description of a commit as printed by git show.
type Summary struct {
	ShortHash string
	Subject   string
	ShortStat string // e.g. "1 file changed, 10 insertions(+), 2 deletions(-)"
}

func (s Summary) String() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", s.ShortHash, s.Subject))
}

// The half-open range of history (From, To].
type Range struct {
	From string
	To   string
}

func (r Range) String() string {
	return fmt.Sprintf("%s..%s", r.From, r.To)
}

// Ranges between each consecutive pair of tags, in order.
func Ranges(tags []string) []Range {
	if len(tags) < 2 {
		return nil
	}

	ranges := make([]Range, 0, len(tags)-1)
	for i := 0; i < len(tags)-1; i++ {
		ranges = append(ranges, Range{From: tags[i], To: tags[i+1]})
	}

	return ranges
}

// Everything needed to ask git for the commits in one range.
type Query struct {
	Range   Range
	Paths   []string
	Filters LogFilters
}
