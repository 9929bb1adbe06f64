package candle

import (
	"strings"
	"testing"
)

const sampleCSV = `open_time,open,high,low,close,volume,close_time,quote_volume,trade_count,taker_buy_base,taker_buy_quote
1700000000000,100.0,105.0,99.0,102.0,10.5,1700000059999,1071.0,42,5.0,510.0
1700000060000,102.0,103.0,101.0,101.5,8.0,1700000119999,812.0,30,4.0,406.0
`

func TestLoadParsesAllRows(t *testing.T) {
	s, err := Load(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 candles, got %d", s.Len())
	}
	first := s.At(0)
	if first.OpenTime != 1700000000000 || first.Close != 102.0 || first.TradeCount != 42 {
		t.Fatalf("unexpected first candle: %+v", first)
	}
	if s.Latest().OpenTime != 1700000060000 {
		t.Fatalf("expected Latest to be the last row, got %+v", s.Latest())
	}
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	data := sampleCSV + "not,enough,fields\n1700000120000,bad,103,101,101.5,8.0,1700000179999,812.0,30,4.0,406.0\n"
	s, err := Load(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected malformed rows skipped, got %d candles", s.Len())
	}
}

func TestLoadEmptyInput(t *testing.T) {
	s, err := Load(strings.NewReader("header,only\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected 0 candles, got %d", s.Len())
	}
}
