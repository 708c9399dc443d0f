package views

import (
	"embed"
	"html/template"
	"net/http"

	"warbler/domain"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// Flash is a one-shot notice stored in the session and rendered on the next
// page load. Category maps to a bootstrap alert class ("success", "danger").
type Flash struct {
	Category string
	Message  string
}

// Data is what every template gets executed with. User is the session user
// (nil for guests), Yield carries the page-specific data.
type Data struct {
	User      *domain.User
	Flashes   []Flash
	CSRFField template.HTML
	Yield     interface{}
}

// View wraps the parsed template set of one page.
type View struct {
	tmpl *template.Template
}

// NewView parses the base layout together with the named page template.
// Templates are embedded in the binary, a bad name is a programmer error,
// so this panics instead of returning an error.
func NewView(name string) *View {
	t := template.Must(template.ParseFS(templateFS,
		"templates/base.gohtml",
		"templates/"+name+".gohtml",
	))
	return &View{tmpl: t}
}

// Render executes the view into the response.
func (v *View) Render(w http.ResponseWriter, data *Data) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return v.tmpl.ExecuteTemplate(w, "base", data)
}
