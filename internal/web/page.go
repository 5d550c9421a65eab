package web

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"knipclean/internal/manifest"
	"knipclean/internal/model"
)

//go:embed index.html.tmpl
var indexHTML string

var pageTmpl = template.Must(template.New("index").Parse(indexHTML))

type pageItem struct {
	Label       string
	Preview     string
	OpenPath    string
	Remove      *model.Message
	RemoveLabel string
	Confirm     string
	Applied     bool
}

type pageSection struct {
	Title string
	Icon  string
	Items []pageItem
}

type pageData struct {
	Root      string
	Clean     bool
	CleanIcon string
	Sections  []pageSection
	ScannedAt string
	Version   string
	Token     string
}

// renderPage writes the review page for s. The output depends on s and the
// action token alone.
func renderPage(w io.Writer, s model.Snapshot, token string) error {
	data := buildPage(s)
	data.Token = token
	return pageTmpl.Execute(w, data)
}

func buildPage(s model.Snapshot) pageData {
	data := pageData{
		Root:      s.Root,
		CleanIcon: model.IconClean,
		Version:   model.Version,
	}
	if !s.ScannedAt.IsZero() {
		data.ScannedAt = s.ScannedAt.Format(time.DateTime)
	}
	r := s.Report
	if r == nil {
		r = model.EmptyReport()
	}
	data.Clean = r.IsClean()

	files := pageSection{Title: "Unused files", Icon: model.IconFile}
	for _, f := range r.Files {
		del := model.DeleteFile(f)
		msg := del.Message()
		files.Items = append(files.Items, pageItem{
			Label:       f,
			Preview:     f,
			OpenPath:    f,
			Remove:      &msg,
			RemoveLabel: "Delete",
			Confirm:     fmt.Sprintf("Delete %s?", f),
			Applied:     s.IsApplied(del),
		})
	}

	deps := func(title, icon string, names []string, dev bool) pageSection {
		sec := pageSection{Title: title, Icon: icon}
		for _, name := range names {
			rm := model.RemoveDependency(name, dev)
			msg := rm.Message()
			sec.Items = append(sec.Items, pageItem{
				Label:       name,
				OpenPath:    manifest.FileName,
				Remove:      &msg,
				RemoveLabel: "Remove",
				Confirm:     fmt.Sprintf("Remove %s from %s?", name, rm.Section()),
				Applied:     s.IsApplied(rm),
			})
		}
		return sec
	}

	exports := pageSection{Title: "Unused exports", Icon: model.IconExport}
	for _, g := range r.Exports {
		exports.Items = append(exports.Items, pageItem{
			Label:    fmt.Sprintf("%s: %s", g.File, strings.Join(g.Names, ", ")),
			Preview:  g.File,
			OpenPath: g.File,
		})
	}

	for _, sec := range []pageSection{
		files,
		deps("Unused dependencies", model.IconDep, r.Dependencies, false),
		deps("Unused devDependencies", model.IconDevDep, r.DevDependencies, true),
		exports,
	} {
		if len(sec.Items) > 0 {
			data.Sections = append(data.Sections, sec)
		}
	}
	return data
}
