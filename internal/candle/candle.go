// Package candle loads historical candlestick CSV files into an in-memory,
// indexable series. It is a pure parser: malformed rows are skipped, and
// no other format is read or written.
package candle

import (
	"bufio"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
)

// Candle is one row of the historical CSV format: open/close time in
// milliseconds since epoch, OHLCV, and the Binance-style taker/quote
// volume breakdown fields.
type Candle struct {
	OpenTime            int64
	Open                float64
	High                float64
	Low                 float64
	Close               float64
	Volume              float64
	CloseTime           int64
	QuoteVolume         float64
	TradeCount          int
	TakerBuyBaseVolume  float64
	TakerBuyQuoteVolume float64
}

// Series is an ordered, indexable collection of candles.
type Series struct {
	candles []Candle
	logger  *log.Logger
}

// Len returns the number of candles loaded.
func (s *Series) Len() int { return len(s.candles) }

// At returns the candle at index i.
func (s *Series) At(i int) Candle { return s.candles[i] }

// Latest returns the most recently loaded candle.
func (s *Series) Latest() Candle { return s.candles[len(s.candles)-1] }

// All returns every loaded candle in file order.
func (s *Series) All() []Candle { return s.candles }

// LoadFile opens path and parses it as the historical candle CSV format.
func LoadFile(path string, opts ...Option) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, opts...)
}

// Option configures Load/LoadFile.
type Option func(*Series)

// WithLogger overrides the logger used for skipped-row diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Series) {
		if l != nil {
			s.logger = l
		}
	}
}

// Load parses r as the historical candle CSV format: a header line
// (skipped) followed by 11-field comma-separated rows. Rows with fewer
// than 11 fields, or with unparseable numeric fields, are skipped and
// logged rather than surfaced as an error.
func Load(r io.Reader, opts ...Option) (*Series, error) {
	s := &Series{logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue // header
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		c, ok := parseRow(line)
		if !ok {
			s.logger.Printf("candle: skipping malformed row %d", lineNo)
			continue
		}
		s.candles = append(s.candles, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

func parseRow(line string) (Candle, bool) {
	fields := strings.Split(line, ",")
	if len(fields) < 11 {
		return Candle{}, false
	}

	openTime, err1 := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	open, err2 := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	high, err3 := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	low, err4 := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
	closePrice, err5 := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)
	volume, err6 := strconv.ParseFloat(strings.TrimSpace(fields[5]), 64)
	closeTime, err7 := strconv.ParseInt(strings.TrimSpace(fields[6]), 10, 64)
	quoteVolume, err8 := strconv.ParseFloat(strings.TrimSpace(fields[7]), 64)
	tradeCount, err9 := strconv.Atoi(strings.TrimSpace(fields[8]))
	takerBuyBase, err10 := strconv.ParseFloat(strings.TrimSpace(fields[9]), 64)
	takerBuyQuote, err11 := strconv.ParseFloat(strings.TrimSpace(fields[10]), 64)

	for _, err := range []error{err1, err2, err3, err4, err5, err6, err7, err8, err9, err10, err11} {
		if err != nil {
			return Candle{}, false
		}
	}

	return Candle{
		OpenTime:            openTime,
		Open:                open,
		High:                high,
		Low:                 low,
		Close:               closePrice,
		Volume:              volume,
		CloseTime:           closeTime,
		QuoteVolume:         quoteVolume,
		TradeCount:          tradeCount,
		TakerBuyBaseVolume:  takerBuyBase,
		TakerBuyQuoteVolume: takerBuyQuote,
	}, true
}
