package main

import (
	"os"
	"testing"
)

func TestMainExitCodes(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"help", []string{"inferbench", "--help"}, 0},
		{"version", []string{"inferbench", "--version"}, 0},
		{"unknown flag", []string{"inferbench", "--no-such-flag"}, 1},
		{"missing model", []string{"inferbench", "-t", "2"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			if got := Main(); got != tt.want {
				t.Errorf("Main() = %d, want %d", got, tt.want)
			}
		})
	}
}
