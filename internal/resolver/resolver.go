// Package resolver turns a filing document number and a chapter-8 item into
// a CVM RAD viewer URL.
package resolver

import (
	"net/url"
	"strings"

	"FRELookup/internal/domain"
)

const (
	// DefaultViewerBase is the CVM RAD ENET root.
	DefaultViewerBase = "https://www.rad.cvm.gov.br/ENET"

	viewerPage   = "frmExibirArquivoFRE.aspx"
	indexPage    = "frmConsultaFRE.aspx"
	documentKey  = "NumeroSequencialDocumento"
	codeKey      = "CodigoQuadro"
	chapterGroup = "8000"
)

// DefaultItemCodes returns the FRE 2025 chapter-8 table.
func DefaultItemCodes() domain.ItemCodeMap {
	return domain.ItemCodeMap{
		"8.1":  "8030",
		"8.2":  "8040",
		"8.3":  "8050",
		"8.4":  "8120",
		"8.5":  "8060",
		"8.6":  "8070",
		"8.7":  "8080",
		"8.8":  "8090",
		"8.9":  "8100",
		"8.10": "8110",
		"8.11": "8210",
		"8.12": "8220",
	}
}

// ResolveURL builds the viewer URL for itemID, or reports false when the
// table has no code for it.
func ResolveURL(base, documentNumber, itemID string, table domain.ItemCodeMap) (string, bool) {
	code, ok := table[itemID]
	if !ok || code == "" {
		return "", false
	}
	return strings.TrimSuffix(base, "/") + "/" + viewerPage +
		"?" + documentKey + "=" + documentNumber +
		"&CodigoGrupo=" + chapterGroup +
		"&" + codeKey + "=" + code, true
}

// IndexURL is the page listing every quadro of a filing.
func IndexURL(base, documentNumber string) string {
	return strings.TrimSuffix(base, "/") + "/" + indexPage + "?" + documentKey + "=" + documentNumber
}

// ExtractDocumentNumber reads NumeroSequencialDocumento from link.
func ExtractDocumentNumber(link string) (string, bool) {
	if strings.TrimSpace(link) == "" {
		return "", false
	}
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", false
	}
	values := parsed.Query()[documentKey]
	if len(values) == 0 || values[0] == "" {
		return "", false
	}
	return values[0], true
}

// IsViewerLink reports whether href points at the quadro viewer page.
func IsViewerLink(href string) bool {
	return strings.Contains(href, viewerPage)
}

// CodeFromViewerLink extracts CodigoQuadro from a viewer href.
func CodeFromViewerLink(href string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	code := parsed.Query().Get(codeKey)
	return code, code != ""
}
