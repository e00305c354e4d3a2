package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasttemplate"
)

const (
	placeholderTimestamp = "timestamp"
	placeholderFilename  = "filename"
)

// NameTemplates renders the branch, commit message and pull request title
// of an upload. Placeholders are written {timestamp} and {filename}.
type NameTemplates struct {
	Branch string
	Commit string
	Title  string
}

// Validate ensures every template parses and the branch template carries
// the timestamp, which is what keeps concurrent upload branches apart.
func (n NameTemplates) Validate() error {
	for name, tmpl := range map[string]string{"branch": n.Branch, "commit": n.Commit, "title": n.Title} {
		if strings.TrimSpace(tmpl) == "" {
			return fmt.Errorf("%s template cannot be empty", name)
		}
		if _, err := fasttemplate.NewTemplate(tmpl, "{", "}"); err != nil {
			return fmt.Errorf("invalid %s template %q: %w", name, tmpl, err)
		}
	}
	if !strings.Contains(n.Branch, "{"+placeholderTimestamp+"}") {
		return fmt.Errorf("branch template %q must contain {%s}", n.Branch, placeholderTimestamp)
	}
	return nil
}

// BranchName renders the branch template for the upload started at ts.
func (n NameTemplates) BranchName(ts time.Time) string {
	return fasttemplate.ExecuteStringStd(n.Branch, "{", "}", map[string]any{
		placeholderTimestamp: strconv.FormatInt(ts.Unix(), 10),
	})
}

// CommitMessage renders the commit template for filename.
func (n NameTemplates) CommitMessage(filename string) string {
	return n.render(n.Commit, filename)
}

// PullRequestTitle renders the pull request title for filename.
func (n NameTemplates) PullRequestTitle(filename string) string {
	return n.render(n.Title, filename)
}

func (n NameTemplates) render(tmpl, filename string) string {
	return fasttemplate.ExecuteStringStd(tmpl, "{", "}", map[string]any{
		placeholderFilename: filename,
	})
}
