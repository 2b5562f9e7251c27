package web

import (
	"html/template"

	"FRELookup/internal/domain"
	"FRELookup/internal/usecase"
)

const linkCaption = "Abrir Documento"

// cell is one rendered table cell; Href turns it into a link.
type cell struct {
	Text string
	Href string
}

type notice struct {
	Level   string
	Message string
}

type pageView struct {
	Title       string
	Fatal       string
	Companies   []string
	Company     string
	Items       []string
	Item        string
	URL         string
	PlanHeaders []string
	PlanRows    [][]cell
	Notices     []notice
}

// planTable renders plans for display. The link column becomes an anchor;
// the records themselves are left untouched.
func planTable(headers []string, plans []domain.PlanRecord) [][]cell {
	linkCol := -1
	for i, h := range headers {
		if h == "Link" {
			linkCol = i
			break
		}
	}

	rows := make([][]cell, 0, len(plans))
	for _, p := range plans {
		row := make([]cell, len(p.Values))
		for i, v := range p.Values {
			row[i] = cell{Text: v}
		}
		if linkCol >= 0 && linkCol < len(row) && p.Link != "" {
			row[linkCol] = cell{Text: linkCaption, Href: p.Link}
		}
		rows = append(rows, row)
	}
	return rows
}

func newPageView(res usecase.Result) pageView {
	view := pageView{
		Title:       "Visualizador de Documentos FRE – CVM",
		Companies:   res.Companies,
		Company:     res.Company,
		Items:       res.Items,
		Item:        res.Item,
		URL:         res.URL,
		PlanHeaders: res.PlanHeaders,
		PlanRows:    planTable(res.PlanHeaders, res.Plans),
	}
	for _, n := range res.Notices {
		view.Notices = append(view.Notices, notice{Level: string(n.Level), Message: n.Message})
	}
	return view
}

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:sans-serif;margin:2rem}
.warning{background:#fff3cd;padding:.5rem}
.info{background:#d1ecf1;padding:.5rem}
.fatal{background:#f8d7da;padding:.5rem}
table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.25rem .5rem}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Fatal}}
<p class="fatal">{{.Fatal}}</p>
<form method="post" action="/reload"><button type="submit">Recarregar</button></form>
{{else}}
<form method="get" action="/">
<label>Selecione a empresa
<select name="empresa" onchange="this.form.submit()">
{{range .Companies}}<option value="{{.}}"{{if eq . $.Company}} selected{{end}}>{{.}}</option>
{{end}}</select></label>
{{if .Items}}
<fieldset><legend>Selecione o item do FRE (Capítulo 8)</legend>
{{range .Items}}<label><input type="radio" name="item" value="{{.}}"{{if eq . $.Item}} checked{{end}} onchange="this.form.submit()">{{.}}</label>
{{end}}</fieldset>
{{end}}
<noscript><button type="submit">Consultar</button></noscript>
</form>
{{range .Notices}}<p class="{{.Level}}">{{.Message}}</p>
{{end}}
{{if .URL}}
<p>Documento FRE – Item {{.Item}}</p>
<p><a href="{{.URL}}" target="_blank">Abrir documento em nova aba</a></p>
{{end}}
{{if .PlanRows}}
<hr>
<h2>Planos de Remuneração</h2>
<table>
<tr>{{range .PlanHeaders}}<th>{{.}}</th>{{end}}</tr>
{{range .PlanRows}}<tr>{{range .}}<td>{{if .Href}}<a href="{{.Href}}" target="_blank">{{.Text}}</a>{{else}}{{.Text}}{{end}}</td>{{end}}</tr>
{{end}}</table>
{{end}}
{{end}}
</body>
</html>
`))
