package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"FRELookup/internal/domain"
	"FRELookup/internal/ports"
	"FRELookup/internal/resolver"
)

// Level grades a Notice for display.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Notice is a non-fatal condition met while resolving a request.
type Notice struct {
	Level   Level
	Kind    error
	Message string
}

// Request is one user interaction.
type Request struct {
	SessionID string
	Company   string
	Item      string
}

// Result is everything a view needs to render one interaction.
type Result struct {
	Companies      []string
	Company        string
	Filing         *domain.FilingRecord
	DocumentNumber string
	Items          []string
	Item           string
	URL            string
	PlanHeaders    []string
	Plans          []domain.PlanRecord
	Notices        []Notice
}

// HasNotice reports whether a notice of kind was raised.
func (r Result) HasNotice(kind error) bool {
	for _, n := range r.Notices {
		if errors.Is(n.Kind, kind) {
			return true
		}
	}
	return false
}

func (r *Result) notify(level Level, kind error, msg string) {
	r.Notices = append(r.Notices, Notice{Level: level, Kind: kind, Message: msg})
}

// Invalidator drops cached datasets.
type Invalidator interface {
	Invalidate()
}

// LookupDeps wires the driven adapters into the lookup use case.
type LookupDeps struct {
	Source     ports.DatasetSource
	Strategy   resolver.Strategy
	Sessions   *Sessions
	Reloader   Invalidator
	ViewerBase string
	Logger     *slog.Logger
}

// Lookup implements the company → filing → item URL and plans workflow.
type Lookup struct {
	source     ports.DatasetSource
	strategy   resolver.Strategy
	sessions   *Sessions
	reloader   Invalidator
	viewerBase string
	logger     *slog.Logger
}

// NewLookup constructs the orchestration component.
func NewLookup(deps LookupDeps) *Lookup {
	sessions := deps.Sessions
	if sessions == nil {
		sessions = NewSessions()
	}
	strategy := deps.Strategy
	if strategy == nil {
		strategy = resolver.NewStaticStrategy(nil)
	}
	base := deps.ViewerBase
	if base == "" {
		base = resolver.DefaultViewerBase
	}
	return &Lookup{
		source:     deps.Source,
		strategy:   strategy,
		sessions:   sessions,
		reloader:   deps.Reloader,
		viewerBase: base,
		logger:     deps.Logger,
	}
}

// Companies returns the selectable company names.
func (l *Lookup) Companies(ctx context.Context) ([]string, error) {
	filings, plans, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return Companies(filings, plans), nil
}

// Plans returns the compensation-plan rows of company.
func (l *Lookup) Plans(ctx context.Context, company string) ([]string, []domain.PlanRecord, error) {
	_, plans, err := l.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	name, _ := domain.NormalizeCompanyName(company)
	return plans.Headers, ListPlans(name, plans), nil
}

// Resolve runs one interaction. The only error it returns is
// domain.ErrDataUnavailable; every other condition becomes a Notice.
func (l *Lookup) Resolve(ctx context.Context, req Request) (Result, error) {
	filings, plans, err := l.load(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{Companies: Companies(filings, plans), PlanHeaders: plans.Headers}
	if len(res.Companies) == 0 {
		res.notify(LevelWarning, domain.ErrCompanyNotFound, "Nenhuma empresa encontrada.")
		return res, nil
	}

	res.Company = res.Companies[0]
	if name, ok := domain.NormalizeCompanyName(req.Company); ok {
		res.Company = name
	}

	l.resolveFiling(ctx, req, filings, &res)

	res.Plans = ListPlans(res.Company, plans)
	if len(res.Plans) == 0 {
		res.notify(LevelInfo, nil, "Nenhum plano de remuneração encontrado para esta empresa.")
	}

	return res, nil
}

func (l *Lookup) resolveFiling(ctx context.Context, req Request, filings domain.Filings, res *Result) {
	filing, ok := SelectFiling(filings, res.Company)
	if !ok {
		res.notify(LevelWarning, domain.ErrCompanyNotFound, "Empresa sem FRE disponível.")
		return
	}
	res.Filing = &filing

	number, ok := resolver.ExtractDocumentNumber(filing.DocumentLink)
	if !ok {
		res.notify(LevelWarning, domain.ErrDocumentNumberMissing, "Não foi possível extrair o número do documento.")
		return
	}
	res.DocumentNumber = number

	table, err := l.items(ctx, req.SessionID, number)
	if err != nil {
		l.warn("item discovery failed", "document", number, "error", err)
		res.notify(LevelWarning, domain.ErrDiscoveryFailed,
			"Não foi possível consultar os itens do FRE. Tente novamente.")
		return
	}
	if len(table) == 0 {
		res.notify(LevelWarning, domain.ErrItemMappingMissing,
			"Nenhum item do capítulo 8 encontrado para este documento.")
		return
	}
	res.Items = table.Items()

	res.Item = res.Items[0]
	if req.Item != "" {
		res.Item = req.Item
	}

	target, ok := resolver.ResolveURL(l.viewerBase, number, res.Item, table)
	if !ok {
		res.notify(LevelWarning, domain.ErrItemMappingMissing,
			fmt.Sprintf("Item %s não disponível para este documento.", res.Item))
		return
	}
	res.URL = target
}

func (l *Lookup) items(ctx context.Context, sessionID, documentNumber string) (domain.ItemCodeMap, error) {
	memo := l.sessions.Items(sessionID)
	table, err := memo.Get(ctx, documentNumber, func(ctx context.Context) (domain.ItemCodeMap, error) {
		return l.strategy.Items(ctx, documentNumber)
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// Reload drops the cached datasets so the next request fetches them again.
func (l *Lookup) Reload() {
	if l.reloader != nil {
		l.reloader.Invalidate()
	}
}

func (l *Lookup) load(ctx context.Context) (domain.Filings, domain.Plans, error) {
	if l.source == nil {
		return domain.Filings{}, domain.Plans{}, fmt.Errorf("%w: no dataset source configured", domain.ErrDataUnavailable)
	}
	filings, plans, err := l.source.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrDataUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
		}
		return domain.Filings{}, domain.Plans{}, err
	}
	return filings, plans, nil
}

func (l *Lookup) warn(msg string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Warn(msg, args...)
	}
}
