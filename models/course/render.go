package course

import (
	"bytes"
	"fmt"
	"html/template"
)

var templates = template.Must(template.New("content").Parse(`
{{define "text"}}<div class="content-text"><h3>{{.Title}}</h3>{{.Content}}</div>{{end}}
{{define "video"}}<div class="content-video"><h3>{{.Title}}</h3>{{if .Embed}}{{.Embed}}{{else}}<a href="{{.URL}}">{{.URL}}</a>{{end}}</div>{{end}}
{{define "image"}}<div class="content-image"><h3>{{.Title}}</h3><img src="{{.FileURL}}" alt="{{.Title}}"></div>{{end}}
{{define "file"}}<div class="content-file"><h3>{{.Title}}</h3><a href="{{.FileURL}}" download>Download file</a></div>{{end}}
`))

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (t *Text) Render() (string, error) { return render("text", t) }

func (v *Video) Render() (string, error) {
	return render("video", struct {
		Title string
		URL   string
		Embed template.HTML
	}{v.Title, v.URL, template.HTML(v.EmbedHTML)})
}

func (i *Image) Render() (string, error) { return render("image", i) }

func (f *File) Render() (string, error) { return render("file", f) }
