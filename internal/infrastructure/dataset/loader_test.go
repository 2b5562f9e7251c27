package dataset

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"FRELookup/internal/domain"
)

const filingsCSV = "CNPJ_CIA;DENOM_CIA;VERSAO;LINK_DOC\n" +
	"00.000.000/0001-91;Banco Exemplo S/A;1;https://www.rad.cvm.gov.br/ENET/frmConsultaExternaCVM.aspx?NumeroSequencialDocumento=100\n" +
	"00.000.000/0001-91;BANCO EXEMPLO SA;3;https://www.rad.cvm.gov.br/ENET/frmConsultaExternaCVM.aspx?NumeroSequencialDocumento=300\n" +
	";;;\n" +
	"11.111.111/0001-11;Companhia Energética de São Paulo;2;https://x/y?NumeroSequencialDocumento=42\n"

func latin1(t *testing.T, s string) []byte {
	t.Helper()
	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return encoded
}

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseFilingsDecodesLatin1AndNormalizes(t *testing.T) {
	t.Parallel()

	filings, err := ParseFilings(bytes.NewReader(latin1(t, filingsCSV)))
	require.NoError(t, err)
	require.Len(t, filings.Records, 3)

	require.Equal(t, "BANCO EXEMPLO S.A.", filings.Records[0].Company)
	require.Equal(t, "BANCO EXEMPLO S.A.", filings.Records[1].Company)
	require.Equal(t, "3", filings.Records[1].Version)
	require.Equal(t, "COMPANHIA ENERGÉTICA DE SÃO PAULO", filings.Records[2].Company)
	require.Equal(t, "https://x/y?NumeroSequencialDocumento=42", filings.Records[2].DocumentLink)
}

func TestParseFilingsMissingColumns(t *testing.T) {
	t.Parallel()

	_, err := ParseFilings(bytes.NewReader(latin1(t, "DENOM_CIA;LINK\nACME;x\n")))
	require.Error(t, err)
	require.Contains(t, err.Error(), "VERSAO")
	require.Contains(t, err.Error(), "LINK_DOC")

	_, err = ParseFilings(bytes.NewReader(nil))
	require.Error(t, err)
}

func TestParsePlansKeepsColumnsAndOrder(t *testing.T) {
	t.Parallel()

	raw := workbook(t, [][]any{
		{"Empresa", "Tipo", "Link"},
		{"Acme SA", "Opções", "https://docs/1"},
		{},
		{"Beta S/A", "Ações restritas", "https://docs/2"},
		{"acme s.a.", "Matching", "https://docs/3"},
	})

	plans, err := ParsePlans(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, []string{"Empresa", "Tipo", "Link"}, plans.Headers)
	require.Len(t, plans.Records, 3)

	first := plans.Records[0]
	require.Equal(t, "ACME S.A.", first.Company)
	require.Equal(t, "https://docs/1", first.Link)
	require.Equal(t, []string{"ACME S.A.", "Opções", "https://docs/1"}, first.Values)
	require.Equal(t, "ACME S.A.", plans.Records[2].Company)
}

func TestParsePlansMissingColumns(t *testing.T) {
	t.Parallel()

	raw := workbook(t, [][]any{{"Companhia", "URL"}, {"Acme", "x"}})
	_, err := ParsePlans(bytes.NewReader(raw))
	require.Error(t, err)
	require.Contains(t, err.Error(), "Empresa")

	_, err = ParsePlans(bytes.NewReader([]byte("not a workbook")))
	require.Error(t, err)
}

func TestLoaderLoad(t *testing.T) {
	t.Parallel()

	csvBody := latin1(t, filingsCSV)
	xlsxBody := workbook(t, [][]any{{"Empresa", "Link"}, {"Acme SA", "https://docs/1"}})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fre.csv":
			_, _ = w.Write(csvBody)
		case "/planos.xlsx":
			_, _ = w.Write(xlsxBody)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	loader := NewLoader(server.Client(), server.URL+"/fre.csv", server.URL+"/planos.xlsx", nil)
	filings, plans, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, filings.Records, 3)
	require.Len(t, plans.Records, 1)
}

func TestLoaderFailsWithoutPartialResults(t *testing.T) {
	t.Parallel()

	csvBody := latin1(t, filingsCSV)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fre.csv" {
			_, _ = w.Write(csvBody)
			return
		}
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	loader := NewLoader(server.Client(), server.URL+"/fre.csv", server.URL+"/planos.xlsx", nil)
	filings, plans, err := loader.Load(context.Background())
	require.True(t, errors.Is(err, domain.ErrDataUnavailable))
	require.Empty(t, filings.Records)
	require.Empty(t, plans.Records)

	_, _, err = NewLoader(nil, "", "", nil).Load(context.Background())
	require.ErrorIs(t, err, domain.ErrDataUnavailable)
}

type countingSource struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (c *countingSource) Load(context.Context) (domain.Filings, domain.Plans, error) {
	c.calls.Add(1)
	if c.fail.Load() {
		return domain.Filings{}, domain.Plans{}, domain.ErrDataUnavailable
	}
	return domain.Filings{Records: []domain.FilingRecord{{Company: "ACME S.A."}}}, domain.Plans{}, nil
}

func TestCachedLoadsOnceUntilInvalidated(t *testing.T) {
	t.Parallel()

	src := &countingSource{}
	cached := NewCached(src, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		filings, _, err := cached.Load(ctx)
		require.NoError(t, err)
		require.Len(t, filings.Records, 1)
	}
	require.EqualValues(t, 1, src.calls.Load())
	require.True(t, cached.Loaded())

	cached.Invalidate()
	require.False(t, cached.Loaded())
	_, _, err := cached.Load(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, src.calls.Load())
}

func TestCachedRetriesAfterFailure(t *testing.T) {
	t.Parallel()

	src := &countingSource{}
	src.fail.Store(true)
	cached := NewCached(src, nil)
	ctx := context.Background()

	_, _, err := cached.Load(ctx)
	require.ErrorIs(t, err, domain.ErrDataUnavailable)
	require.False(t, cached.Loaded())

	src.fail.Store(false)
	_, _, err = cached.Load(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, src.calls.Load())
}

func TestLoaderRejectsOversizedBody(t *testing.T) {
	t.Parallel()

	csvBody := latin1(t, filingsCSV)
	xlsxBody := workbook(t, [][]any{{"Empresa", "Link"}, {"Acme SA", "https://docs/1"}})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fre.csv" {
			_, _ = w.Write(csvBody)
			return
		}
		_, _ = w.Write(xlsxBody)
	}))
	defer server.Close()

	loader := NewLoader(server.Client(), server.URL+"/fre.csv", server.URL+"/planos.xlsx", nil)
	loader.maxBody = int64(len(csvBody) - 10)

	filings, plans, err := loader.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrDataUnavailable)
	require.Contains(t, err.Error(), "exceeds")
	require.Empty(t, filings.Records)
	require.Empty(t, plans.Records)

	loader.maxBody = int64(max(len(csvBody), len(xlsxBody)))
	filings, _, err = loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, filings.Records, 3)
}

func TestNewLoaderDefaultTimeout(t *testing.T) {
	t.Parallel()

	loader := NewLoader(nil, "https://x/fre.csv", "https://x/planos.xlsx", nil)
	require.Equal(t, 15*time.Second, loader.client.Timeout)
	require.EqualValues(t, maxBodyBytes, loader.maxBody)

	custom := &http.Client{Timeout: time.Second}
	require.Same(t, custom, NewLoader(custom, "", "", nil).client)
}
