package services

import (
	"bytes"
	"context"
	"errors"
	"html/template"

	"centre-block/internal/metrics"
	"centre-block/internal/models"

	"go.uber.org/zap"
)

// Copy shown on published pages. None of it carries upstream error detail.
const (
	PlaceholderMessage = "No collection centre selected."
	UnavailableMessage = "Unable to load collection centre information."
	InvalidMessage     = "Invalid response from API."
	NotFoundMessage    = "Collection centre not found."
)

var blockTemplates = template.Must(template.New("block").Parse(`
{{- define "placeholder" -}}
<div class="awanui-collection-centre-block"><div class="awanui-centre-placeholder"><p>{{.}}</p></div></div>
{{- end -}}

{{- define "error" -}}
<div class="awanui-collection-centre-block"><div class="awanui-centre-error"><p>{{.}}</p></div></div>
{{- end -}}

{{- define "centre" -}}
<div class="awanui-collection-centre-block">
<div class="awanui-centre-info">
<h3 class="awanui-centre-name">{{.Name}}</h3>
<div class="awanui-centre-details">
<div class="awanui-centre-address">
<strong>Address:</strong>
<p>{{.Address}}{{range .LocalityLines}}<br>{{.}}{{end}}</p>
</div>
<div class="awanui-centre-phone">
<strong>Phone:</strong>
<p>{{if .PhoneLink}}<a href="{{.PhoneLink}}">{{.Phone}}</a>{{else}}{{.Phone}}{{end}}</p>
</div>
{{- if .HasHours}}
<div class="awanui-centre-hours">
<strong>Opening Hours:</strong>
{{range .HoursLines}}<div>{{.}}</div>{{end}}
</div>
{{- end}}
<div class="awanui-centre-directions">
<a href="{{.MapsURL}}" target="_blank" rel="noopener noreferrer" class="awanui-directions-link">Get Directions</a>
</div>
</div>
</div>
</div>
{{- end -}}
`))

// centreView adds the one piece of trusted markup the template is allowed:
// the tel: link, which telHref builds from digits only.
type centreView struct {
	models.DisplayModel
	PhoneLink template.URL
}

// Renderer produces the published HTML fragment for a block selection.
// Every call runs its own fetch, resolve and format; nothing is shared.
type Renderer struct {
	resolver *Resolver
	logr     *zap.Logger
}

func NewRenderer(resolver *Resolver, logr *zap.Logger) *Renderer {
	return &Renderer{resolver: resolver, logr: logr}
}

// RenderMarkup returns the fragment for selection. It always returns markup:
// failures become fixed, generic error copy.
func (r *Renderer) RenderMarkup(ctx context.Context, selection string) string {
	centre, err := r.resolver.Resolve(ctx, selection, nil)
	switch {
	case errors.Is(err, ErrNoSelection):
		metrics.RenderTotal.WithLabelValues("placeholder").Inc()
		return r.execute("placeholder", PlaceholderMessage)
	case errors.Is(err, ErrCentreNotFound):
		metrics.RenderTotal.WithLabelValues("not_found").Inc()
		r.logr.Info("centre not in directory", zap.String("centre_id", selection))
		return r.execute("error", NotFoundMessage)
	case IsFailureKind(err, InvalidResponse):
		metrics.RenderTotal.WithLabelValues("invalid_response").Inc()
		r.logr.Error("directory returned invalid data", zap.String("centre_id", selection), zap.Error(err))
		return r.execute("error", InvalidMessage)
	case err != nil:
		metrics.RenderTotal.WithLabelValues("unavailable").Inc()
		r.logr.Error("directory unavailable", zap.String("centre_id", selection), zap.Error(err))
		return r.execute("error", UnavailableMessage)
	}

	metrics.RenderTotal.WithLabelValues("ok").Inc()
	return r.RenderCentre(Format(centre))
}

// RenderCentre renders an already formatted centre.
func (r *Renderer) RenderCentre(d models.DisplayModel) string {
	view := centreView{DisplayModel: d}
	if d.PhoneHref != "" {
		view.PhoneLink = template.URL(d.PhoneHref)
	}
	return r.execute("centre", view)
}

// RenderError renders the error fragment with fixed copy.
func (r *Renderer) RenderError(message string) string {
	return r.execute("error", message)
}

func (r *Renderer) execute(name string, data any) string {
	var buf bytes.Buffer
	if err := blockTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		r.logr.Error("render template failed", zap.String("template", name), zap.Error(err))
		return `<div class="awanui-collection-centre-block"><div class="awanui-centre-error"><p>` +
			template.HTMLEscapeString(UnavailableMessage) + `</p></div></div>`
	}
	return buf.String()
}
