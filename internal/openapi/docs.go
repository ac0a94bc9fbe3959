package openapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggest/swgui/v5emb"
)

// SpecFileName is served under the docs path.
const SpecFileName = "openapi.json"

// Docs serves the document as JSON and the Swagger UI pointing at it.
type Docs struct {
	basePath string
	document []byte
	ui       http.Handler
}

// NewDocs prepares the docs endpoint mounted at basePath.
func NewDocs(doc *openapi3.T, basePath string) (*Docs, error) {
	if doc == nil {
		return nil, ErrNoSchema
	}

	document, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("error marshaling OpenAPI document: %w", err)
	}

	basePath = "/" + strings.Trim(basePath, "/")

	title := "API documentation"
	if doc.Info != nil && doc.Info.Title != "" {
		title = doc.Info.Title
	}

	return &Docs{
		basePath: basePath,
		document: document,
		ui:       v5emb.New(title, basePath+"/"+SpecFileName, basePath+"/"),
	}, nil
}

// BasePath is the path the docs are mounted at, without a trailing slash.
func (d *Docs) BasePath() string {
	return d.basePath
}

// SpecPath is the path of the JSON document.
func (d *Docs) SpecPath() string {
	return d.basePath + "/" + SpecFileName
}

// ServeSpec writes the document as JSON.
func (d *Docs) ServeSpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.document)
}

// ServeUI serves the Swagger UI assets.
func (d *Docs) ServeUI(w http.ResponseWriter, r *http.Request) {
	d.ui.ServeHTTP(w, r)
}
