package app

import (
	"context"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"nirlamp/adapters/excel"
	"nirlamp/adapters/report"
	"nirlamp/adapters/spreadsheetxml"
	"nirlamp/domain/spectra"
	"nirlamp/internal"
	"nirlamp/internal/analysis"
	"nirlamp/internal/errors"
)

// AnalysisResult is the wholesale outcome of one analyze action.
type AnalysisResult struct {
	Products    []string                                      `json:"products"`
	Statistics  map[string]map[string]analysis.LampStatistics `json:"statistics"`
	Comparisons map[string]analysis.ProductComparison         `json:"comparisons"`
	Parameters  map[string][]string                           `json:"parameters"`
}

// AnalyzerService holds one analysis session: the immutable parsed tables
// plus the most recently computed snapshot. Both are only ever mutated by
// replacement — a new load replaces the tables, a new analyze replaces the
// snapshot. A weighted semaphore of capacity one admits a single in-flight
// action at a time; the next action waits for the current one to complete.
// The mutex covers the state fields so readers see a consistent snapshot
// while an action is replacing it.
type AnalyzerService struct {
	log *internal.Logger
	sem *semaphore.Weighted

	mu       sync.RWMutex
	tables   map[string]*spectra.ProductTable
	products []string
	serial   string

	filtered    map[string]*spectra.ProductTable
	statistics  map[string]map[string]analysis.LampStatistics
	comparisons map[string]analysis.ProductComparison
}

// NewAnalyzerService creates an empty analysis session.
func NewAnalyzerService(logger *internal.Logger) *AnalyzerService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalyzerService{
		log: logger,
		sem: semaphore.NewWeighted(1),
	}
}

// Load parses a spreadsheet-XML export and replaces the session's tables
// wholesale. Any previously computed snapshot is discarded.
func (s *AnalyzerService) Load(ctx context.Context, r io.Reader) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return errors.Wrap(err, "analysis session unavailable")
	}
	defer s.sem.Release(1)

	extraction, err := spreadsheetxml.Extract(r)
	if err != nil {
		return err
	}

	tables := make(map[string]*spectra.ProductTable, len(extraction.Tables))
	products := make([]string, 0, len(extraction.Tables))
	for _, table := range extraction.Tables {
		tables[table.Name] = table
		products = append(products, table.Name)
	}

	s.mu.Lock()
	s.tables = tables
	s.products = products
	s.serial = extraction.InstrumentSerial
	s.filtered = nil
	s.statistics = nil
	s.comparisons = nil
	s.mu.Unlock()

	s.log.Info("loaded %d product tables (instrument %q)", len(products), extraction.InstrumentSerial)
	return nil
}

// Products returns the loaded product names in document order.
func (s *AnalyzerService) Products() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.products...)
}

// InstrumentSerial returns the serial captured during extraction, if any.
func (s *AnalyzerService) InstrumentSerial() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serial
}

// SelectionKeys returns the sorted unique (ID, Note) pairs for the named
// products; an empty product list means all loaded products.
func (s *AnalyzerService) SelectionKeys(products []string) ([]spectra.SelectionKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tables == nil {
		return nil, errors.NoAnalysis("no document loaded")
	}
	if len(products) == 0 {
		products = s.products
	}
	return analysis.UniqueSelectionKeys(s.tables, products), nil
}

// Analyze runs the filter → aggregate → compare pipeline and replaces the
// session snapshot wholesale. An empty product list means all loaded
// products; an empty key list means every observed (ID, Note) pair of the
// chosen products.
func (s *AnalyzerService) Analyze(ctx context.Context, products []string, keys []spectra.SelectionKey) (*AnalysisResult, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "analysis session unavailable")
	}
	defer s.sem.Release(1)

	s.mu.RLock()
	tables := s.tables
	if len(products) == 0 {
		products = s.products
	}
	s.mu.RUnlock()

	if tables == nil {
		return nil, errors.NoAnalysis("no document loaded")
	}
	if len(keys) == 0 {
		keys = analysis.UniqueSelectionKeys(tables, products)
	}

	filtered := analysis.Filter(tables, products, keys)
	statistics := analysis.Aggregate(filtered)
	comparisons := analysis.CompareToBaseline(statistics, tables)

	s.mu.Lock()
	s.filtered = filtered
	s.statistics = statistics
	s.comparisons = comparisons
	ordered := s.analyzedProducts()
	s.mu.Unlock()

	result := &AnalysisResult{
		Products:    ordered,
		Statistics:  statistics,
		Comparisons: comparisons,
		Parameters:  make(map[string][]string, len(statistics)),
	}
	for product := range statistics {
		if table, ok := tables[product]; ok {
			result.Parameters[product] = table.Parameters()
		}
	}

	s.log.Info("analysis computed: %d products, %d selection keys", len(statistics), len(keys))
	return result, nil
}

// ReportData assembles the current snapshot for the report and export
// renderers.
func (s *AnalyzerService) ReportData() (report.Data, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.statistics == nil {
		return report.Data{}, errors.NoAnalysis("no analysis computed")
	}
	return report.Data{
		InstrumentSerial: s.serial,
		Products:         s.analyzedProducts(),
		Tables:           s.tables,
		Statistics:       s.statistics,
		Comparisons:      s.comparisons,
		GeneratedAt:      time.Now(),
	}, nil
}

// TextReport renders the fixed-width report for the current snapshot.
func (s *AnalyzerService) TextReport() (string, error) {
	data, err := s.ReportData()
	if err != nil {
		return "", err
	}
	return report.Text(data), nil
}

// ExportWorkbook writes the current snapshot to an .xlsx workbook at path.
func (s *AnalyzerService) ExportWorkbook(path string) error {
	data, err := s.ReportData()
	if err != nil {
		return err
	}
	return excel.WriteWorkbook(path, data)
}

// ExportFilename builds the conventional file name for an export with the
// given extension.
func (s *AnalyzerService) ExportFilename(ext string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lamps := make(map[string]struct{})
	for _, lampStats := range s.statistics {
		for lamp := range lampStats {
			lamps[lamp] = struct{}{}
		}
	}
	names := make([]string, 0, len(lamps))
	for lamp := range lamps {
		names = append(names, lamp)
	}
	return report.Filename(s.serial, names, time.Now(), ext)
}

// analyzedProducts keeps document order for the products present in the
// current snapshot. Callers hold mu.
func (s *AnalyzerService) analyzedProducts() []string {
	var ordered []string
	for _, product := range s.products {
		if _, ok := s.statistics[product]; ok {
			ordered = append(ordered, product)
		}
	}
	return ordered
}
