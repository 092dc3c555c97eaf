package markdown

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/aretw0/folio/pkg/core"
)

func newReference(kind core.ReferenceKind, target, label string) core.Reference {
	return core.Reference{
		Kind:     kind,
		Target:   target,
		Text:     label,
		External: isExternal(target),
	}
}

// isExternal reports whether target leaves the site: it has a scheme
// (https:, mailto:) or is protocol-relative.
func isExternal(target string) bool {
	if strings.HasPrefix(target, "//") {
		return true
	}
	u, err := url.Parse(target)
	return err == nil && u.Scheme != ""
}

// checkReferences verifies that local targets exist and that images are
// images. Outbound references are never fetched.
func (i *Inspector) checkReferences(doc core.Document, refs []core.Reference) []core.Issue {
	var issues []core.Issue
	checked := make(map[string]bool)

	for _, ref := range refs {
		if ref.External {
			continue
		}
		key := string(ref.Kind) + "\x00" + ref.Target
		if checked[key] {
			continue
		}
		checked[key] = true

		candidates, ok := i.localCandidates(doc, ref.Target)
		if !ok {
			continue
		}

		found := ""
		for _, c := range candidates {
			if info, err := os.Stat(c); err == nil {
				if info.IsDir() {
					continue
				}
				found = c
				break
			}
		}
		if found == "" {
			issues = append(issues, core.Issue{
				Severity: core.SeverityWarning,
				Field:    "body",
				Code:     core.CodeRefMissing,
				Message:  fmt.Sprintf("%s target %q does not exist", ref.Kind, ref.Target),
			})
			continue
		}

		if ref.Kind != core.RefImage {
			continue
		}
		mt, err := mimetype.DetectFile(found)
		if err != nil {
			i.logger.Debug("failed to sniff image", "path", found, "error", err)
			continue
		}
		if !strings.HasPrefix(mt.String(), "image/") {
			issues = append(issues, core.Issue{
				Severity: core.SeverityWarning,
				Field:    "body",
				Code:     core.CodeRefNotImage,
				Message:  fmt.Sprintf("image target %q is %s", ref.Target, mt.String()),
			})
		}
	}
	return issues
}

// localCandidates lists the files a local target may refer to. Relative
// targets resolve against the document's directory, root-relative ones
// against the static directory and then the content root. Links to pages may
// omit the Markdown extension or point at a bundle directory.
func (i *Inspector) localCandidates(doc core.Document, target string) ([]string, bool) {
	u, err := url.Parse(target)
	if err != nil || u.Path == "" {
		// Fragment-only targets point inside the document.
		return nil, false
	}
	p := u.Path

	var bases []string
	if strings.HasPrefix(p, "/") {
		if i.staticDir != "" {
			bases = append(bases, filepath.Join(i.staticDir, filepath.FromSlash(p)))
		}
		if i.contentDir != "" {
			bases = append(bases, filepath.Join(i.contentDir, filepath.FromSlash(p)))
		}
	} else if i.contentDir != "" {
		dir := path.Dir(doc.Path)
		bases = append(bases, filepath.Join(i.contentDir, filepath.FromSlash(path.Join(dir, p))))
	}
	if len(bases) == 0 {
		return nil, false
	}

	var candidates []string
	for _, b := range bases {
		candidates = append(candidates,
			b,
			b+".md",
			filepath.Join(b, "index.md"),
			filepath.Join(b, "_index.md"),
		)
	}
	return candidates, true
}
