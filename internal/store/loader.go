package store

import (
	"context"
	"encoding/csv"
	"encoding/gob"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"superstore-dashboard/internal/models"
)

const (
	batchSize    = 2000
	maxWorkers   = 8
	cacheVersion = "v1"
)

// header names as they appear in the source spreadsheet
const (
	hdrOrderDate = "Order Date"
	hdrSales     = "Sales"
	hdrQuantity  = "Quantity"
	hdrProfit    = "Profit"
)

var requiredHeaders = []string{
	hdrOrderDate,
	string(ColRegion),
	string(ColState),
	string(ColCity),
	string(ColSegment),
	string(ColCategory),
	string(ColSubCategory),
	string(ColShipMode),
	hdrSales,
	hdrQuantity,
	hdrProfit,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"02-01-2006",
}

type cachedTable struct {
	Rows         []models.Order
	LastModified time.Time
}

// Loader reads the source spreadsheet into a Table. A parsed copy is kept in
// cacheDir so restarts skip the spreadsheet parse while the file is unchanged.
type Loader struct {
	cacheDir string
	logger   *slog.Logger
}

func NewLoader(cacheDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		cacheDir: cacheDir,
		logger:   logger,
	}
}

// Load reads an .xlsx or .csv file. Any malformed row fails the whole load.
func (l *Loader) Load(ctx context.Context, filename, sheet string) (*Table, error) {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("stat data file: %w", err)
	}

	if cached, err := l.loadFromCache(filename); err == nil && fileInfo.ModTime().Before(cached.LastModified) {
		l.logger.Info("loaded from cache", "records", len(cached.Rows), "filename", filename)
		return NewTable(cached.Rows, filename), nil
	}

	start := time.Now()
	l.logger.Info("reading data file", "filename", filename, "sheet", sheet)

	var records [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		records, err = readXLSX(filename, sheet)
	case ".csv":
		records, err = readCSV(filename)
	default:
		return nil, fmt.Errorf("unsupported data file type %q", filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}

	rows, err := ParseRecords(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	if err := l.saveToCache(filename, rows); err != nil {
		l.logger.Warn("failed to save cache", "error", err)
	}

	duration := time.Since(start)
	l.logger.Info("data file parsed",
		"records", len(rows),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(len(rows))/duration.Seconds()))

	return NewTable(rows, filename), nil
}

func readXLSX(filename, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(filename)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	// Raw values keep dates as Excel serial numbers instead of locale strings.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(filename string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

// ParseRecords converts a header row plus data rows into orders. Blank rows
// are skipped; a row with an unparseable field is an error.
func ParseRecords(ctx context.Context, records [][]string) ([]models.Order, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	index, err := headerIndex(records[0])
	if err != nil {
		return nil, err
	}

	data := records[1:]
	parsed := make([]models.Order, len(data))
	keep := make([]bool, len(data))

	var g errgroup.Group
	g.SetLimit(maxWorkers)

	for start := 0; start < len(data); start += batchSize {
		end := min(start+batchSize, len(data))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if isBlank(data[i]) {
					continue
				}
				order, err := parseOrder(data[i], index)
				if err != nil {
					// +2: one for the header, one for 1-based spreadsheet rows
					return fmt.Errorf("row %d: %w", i+2, err)
				}
				parsed[i] = order
				keep[i] = true
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]models.Order, 0, len(parsed))
	for i, ok := range keep {
		if ok {
			rows = append(rows, parsed[i])
		}
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no valid records found")
	}
	return rows, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	var missing []string
	for _, h := range requiredHeaders {
		if _, ok := index[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func parseOrder(record []string, index map[string]int) (models.Order, error) {
	cell := func(name string) string {
		i := index[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	orderDate, err := ParseDate(cell(hdrOrderDate))
	if err != nil {
		return models.Order{}, fmt.Errorf("%s: %w", hdrOrderDate, err)
	}

	sales, err := parseNumber(cell(hdrSales))
	if err != nil {
		return models.Order{}, fmt.Errorf("%s: %w", hdrSales, err)
	}

	profit, err := parseNumber(cell(hdrProfit))
	if err != nil {
		return models.Order{}, fmt.Errorf("%s: %w", hdrProfit, err)
	}

	quantity, err := parseInteger(cell(hdrQuantity))
	if err != nil {
		return models.Order{}, fmt.Errorf("%s: %w", hdrQuantity, err)
	}

	return models.Order{
		OrderDate:   orderDate,
		Region:      cell(string(ColRegion)),
		State:       cell(string(ColState)),
		City:        cell(string(ColCity)),
		Segment:     cell(string(ColSegment)),
		Category:    cell(string(ColCategory)),
		SubCategory: cell(string(ColSubCategory)),
		ShipMode:    cell(string(ColShipMode)),
		Sales:       sales,
		Quantity:    quantity,
		Profit:      profit,
	}, nil
}

// ParseDate accepts an Excel serial date or one of the common text layouts.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return excelize.ExcelDateToTime(serial, false)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func parseNumber(s string) (float64, error) {
	s = strings.NewReplacer(",", "", "$", "").Replace(s)
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	return strconv.ParseFloat(s, 64)
}

func parseInteger(s string) (int, error) {
	f, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (l *Loader) cacheFilename(dataPath string) string {
	return filepath.Join(l.cacheDir, fmt.Sprintf("%s_%s.gob", strings.ReplaceAll(dataPath, string(filepath.Separator), "_"), cacheVersion))
}

func (l *Loader) saveToCache(dataPath string, rows []models.Order) error {
	if l.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(l.cacheDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(l.cacheFilename(dataPath))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(cachedTable{Rows: rows, LastModified: time.Now()})
}

func (l *Loader) loadFromCache(dataPath string) (*cachedTable, error) {
	if l.cacheDir == "" {
		return nil, fmt.Errorf("cache disabled")
	}
	file, err := os.Open(l.cacheFilename(dataPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var data cachedTable
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
