package main

import (
	"testing"
	"time"
)

func TestSimulateCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		ok   bool
	}{
		{"solver quickstart", []string{"--mode", "quickstart", "--rounds", "2", "--seed", "3"}, true},
		{"solver with extras", []string{"--rounds", "1", "--seed", "4", "--hints", "50", "--extra"}, true},
		{"random capped", []string{"--bot", "random", "--seed", "5", "--max-turns", "5"}, true},
		{"bad mode", []string{"--mode", "expert"}, false},
		{"bad bot", []string{"--bot", "oracle"}, false},
		{"bad percent", []string{"--mistakes", "150"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", "error")
			cmd := newSimulateCmd()
			cmd.SetArgs(tt.args)
			err := cmd.Execute()
			if (err == nil) != tt.ok {
				t.Fatalf("Execute(%v) = %v", tt.args, err)
			}
		})
	}
}

func TestSweepEvery(t *testing.T) {
	tests := []struct {
		ttl, want time.Duration
	}{
		{2 * time.Hour, 30 * time.Minute},
		{time.Minute, 15 * time.Second},
		{3 * time.Second, time.Second},
		{time.Nanosecond, time.Second},
	}
	for _, tt := range tests {
		if got := sweepEvery(tt.ttl); got != tt.want {
			t.Errorf("sweepEvery(%s) = %s, want %s", tt.ttl, got, tt.want)
		}
	}
}
