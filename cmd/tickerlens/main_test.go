package main

import (
	"errors"
	"reflect"
	"testing"

	"TickerLens/internal/ticker"
)

func TestParseWindows(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"", nil},
		{"20", []int{20}},
		{"20, 50,,200", []int{20, 50, 200}},
	}
	for _, tt := range tests {
		got, err := parseWindows(tt.in)
		if err != nil {
			t.Errorf("parseWindows(%q): %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseWindows(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := parseWindows("20,abc"); !errors.Is(err, ticker.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
