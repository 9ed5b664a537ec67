package fundamentals

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
)

var refreshNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

// onvistaPage is a calendar-year reporter as rendered on 2024-06-15
const onvistaPage = `<html><body>
<div class="box"><span>Geschäftsjahresende: 31.12.</span></div>
<table><thead><tr><th>Gewinn</th><th class="ZAHL">2025e</th><th class="ZAHL">2024e</th><th class="ZAHL">2023</th><th class="ZAHL">2022</th><th class="ZAHL">2021</th></tr></thead>
<tbody>
<tr><td>Gewinn pro Aktie in EUR</td><td class="ZAHL">3,00</td><td class="ZAHL">2,50</td><td class="ZAHL">2,00</td><td class="ZAHL">1,50</td><td class="ZAHL">1,00</td></tr>
</tbody></table>
<table><thead><tr><th>Rentabilität</th><th class="ZAHL">2024e</th><th class="ZAHL">2023</th><th class="ZAHL">2022</th></tr></thead>
<tbody>
<tr><td>Eigenkapitalrendite</td><td class="ZAHL">18,50%</td><td class="ZAHL">21,30%</td><td class="ZAHL">19,00%</td></tr>
<tr><td>EBIT-Marge</td><td class="ZAHL">13,10%</td><td class="ZAHL">12,50%</td><td class="ZAHL">11,00%</td></tr>
<tr><td>Marktkapitalisierung in Mio. EUR</td><td class="ZAHL">150.000,00</td><td class="ZAHL">140.123,45</td><td class="ZAHL">120.000,00</td></tr>
</tbody></table>
<table><thead><tr><th>Bilanz</th><th class="ZAHL">2023</th><th class="ZAHL">2022</th></tr></thead>
<tbody>
<tr><td>Eigenkapitalquote</td><td class="ZAHL">28,40%</td><td class="ZAHL">27,00%</td></tr>
</tbody></table>
</body></html>`

const (
	revisionPage = `<table><tr><td>Positive Analystenhaltung</td></tr></table>`
	dibaPage     = `<div class="sh_analysis_col sh_analysis_col_1"><div>Kaufen</div>5</div>
<div class="sh_analysis_col sh_analysis_col_2"><div>Halten</div>3</div>
<div class="sh_analysis_col sh_analysis_col_3"><div>Verkaufen</div>2</div>`
	assetSearchBody = `{"onvista":{"results":{"asset":[
{"type":"Fonds","snapshotlink":"https://www.onvista.de/fonds/SAP-FONDS"},
{"type":"Aktie","snapshotlink":"https://www.onvista.de/aktien/SAP-Aktie-DE0007164600"}]}}}`
)

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) FetchText(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if body, ok := f.pages[url]; ok {
		return body, nil
	}
	return "", fmt.Errorf("GET %s: status 404", url)
}

type fakeStorage struct {
	records map[string]*models.FundamentalMetrics
	saves   int
}

func newFakeStorage(records ...*models.FundamentalMetrics) *fakeStorage {
	s := &fakeStorage{records: make(map[string]*models.FundamentalMetrics)}
	for _, r := range records {
		s.records[r.Symbol] = r
	}
	return s
}

func (s *fakeStorage) LoadLatest(ctx context.Context, symbol string) (*models.FundamentalMetrics, error) {
	fd, ok := s.records[strings.ToUpper(symbol)]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	cp := *fd
	return &cp, nil
}

func (s *fakeStorage) Save(ctx context.Context, fd *models.FundamentalMetrics) (*models.FundamentalMetrics, error) {
	cp := *fd
	if cp.ID == "" {
		cp.ID = "fd_" + cp.Symbol
	}
	s.records[cp.Symbol] = &cp
	s.saves++
	return &cp, nil
}

func (s *fakeStorage) List(ctx context.Context) ([]*models.FundamentalMetrics, error) {
	out := make([]*models.FundamentalMetrics, 0, len(s.records))
	for _, r := range s.records {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (s *fakeStorage) Delete(ctx context.Context, symbol string) error {
	if _, ok := s.records[symbol]; !ok {
		return interfaces.ErrNotFound
	}
	delete(s.records, symbol)
	return nil
}

// fakeQuotes prices every stock at 50 and reports fixed statistics
type fakeQuotes struct {
	reversalCalls int
}

func (f *fakeQuotes) QueryQuotes(ctx context.Context, symbol string, from, to time.Time) (models.PriceSeries, error) {
	return models.PriceSeries{{Symbol: symbol, Date: to, Close: 50}}, nil
}

func (f *fakeQuotes) ReactionToQuarterlyFigures(context.Context, *models.FundamentalMetrics) float64 {
	return 2
}

func (f *fakeQuotes) RateProgress6Month(context.Context, *models.FundamentalMetrics) float64 {
	return 10
}

func (f *fakeQuotes) RateProgress1Year(context.Context, *models.FundamentalMetrics) float64 {
	return 10
}

func (f *fakeQuotes) Reversal3Month(context.Context, *models.FundamentalMetrics) []float64 {
	f.reversalCalls++
	return []float64{-1, -1, -1}
}
