package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"FRELookup/internal/domain"
	"FRELookup/internal/ports"
	"FRELookup/internal/resolver"
)

const defaultTimeout = 15 * time.Second

var itemExpr = regexp.MustCompile(`^8\.\d+`)

// IndexScraper discovers chapter-8 items from the FRE consultation page.
type IndexScraper struct {
	client *http.Client
	base   string
	logger *slog.Logger
}

var _ ports.ItemDiscoverer = (*IndexScraper)(nil)

// NewIndexScraper wires an HTTP client; a nil client gets a 15s timeout.
func NewIndexScraper(client *http.Client, base string, log *slog.Logger) *IndexScraper {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if base == "" {
		base = resolver.DefaultViewerBase
	}
	return &IndexScraper{client: client, base: base, logger: log}
}

// DiscoverItems fetches the index page of documentNumber and maps each
// chapter-8 entry to its CodigoQuadro. A page without chapter-8 entries
// yields an empty map; fetch and parse failures wrap domain.ErrDiscoveryFailed.
func (s *IndexScraper) DiscoverItems(ctx context.Context, documentNumber string) (domain.ItemCodeMap, error) {
	pageURL := resolver.IndexURL(s.base, documentNumber)
	s.debug("discover items", "document", documentNumber, "url", pageURL)

	doc, err := s.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: document %s: %v", domain.ErrDiscoveryFailed, documentNumber, err)
	}

	items := extractItems(doc)
	s.debug("items discovered", "document", documentNumber, "count", len(items))
	return items, nil
}

func (s *IndexScraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "FRELookup/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rad returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

// extractItems walks anchors in page order; a later anchor for the same
// item overwrites an earlier one.
func extractItems(doc *goquery.Document) domain.ItemCodeMap {
	items := domain.ItemCodeMap{}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !resolver.IsViewerLink(href) {
			return
		}
		code, ok := resolver.CodeFromViewerLink(href)
		if !ok {
			return
		}
		item := itemExpr.FindString(strings.TrimSpace(a.Text()))
		if item == "" {
			return
		}
		items[item] = code
	})
	return items
}

func (s *IndexScraper) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
