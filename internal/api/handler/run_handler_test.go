package handler

import (
	"errors"
	"testing"

	"github.com/timmy/batchpub/internal/service"
)

func TestWithin(t *testing.T) {
	tests := []struct {
		dir    string
		target string
		want   bool
	}{
		{"/data/sheets", "/data/sheets/plan.xlsx", true},
		{"/data/sheets", "/data/sheets/2025/plan.xlsx", true},
		{"/data/sheets", "/data/sheets", false},
		{"/data/sheets", "/data/sheets-old/plan.xlsx", false},
		{"/data/sheets", "/data/sheets/../secrets.xlsx", false},
		{"/data/sheets", "s3://bucket/plan.xlsx", false},
		{"s3://bucket/plans", "s3://bucket/plans/march.xlsx", true},
		{"s3://bucket/plans", "s3://bucket/plans/../other.xlsx", false},
		{"s3://bucket/plans", "s3://other/plans/march.xlsx", false},
		{"s3://bucket/plans", "/data/plans/march.xlsx", false},
	}
	for _, tt := range tests {
		t.Run(tt.dir+" "+tt.target, func(t *testing.T) {
			if got := within(tt.dir, tt.target); got != tt.want {
				t.Errorf("within(%q, %q) = %v, want %v", tt.dir, tt.target, got, tt.want)
			}
		})
	}
}

func TestRunRequest_Apply(t *testing.T) {
	simulate := true
	tests := []struct {
		name    string
		req     RunRequest
		wantErr error
		want    service.RunOptions
	}{
		{
			name: "sheet override keeps directory",
			req:  RunRequest{SheetPath: "s3://plans/2025/april.xlsx", SheetName: "Q2", Simulate: &simulate},
			want: service.RunOptions{SheetPath: "s3://plans/2025/april.xlsx", SheetName: "Q2", MediaDir: "/media", Simulate: true},
		},
		{
			name:    "sheet override in another bucket",
			req:     RunRequest{SheetPath: "s3://other/2025/april.xlsx"},
			wantErr: errSheetOutsideDir,
		},
		{
			name:    "media override outside",
			req:     RunRequest{MediaDir: "/home"},
			wantErr: errMediaOutsideDir,
		},
		{
			name: "sheet name only",
			req:  RunRequest{SheetName: "Q3"},
			want: service.RunOptions{SheetPath: "s3://plans/2025/march.xlsx", SheetName: "Q3", MediaDir: "/media"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := service.RunOptions{SheetPath: "s3://plans/2025/march.xlsx", MediaDir: "/media"}
			err := tt.req.apply(&opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("apply() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if opts.SheetPath != tt.want.SheetPath || opts.SheetName != tt.want.SheetName ||
				opts.MediaDir != tt.want.MediaDir || opts.Simulate != tt.want.Simulate {
				t.Errorf("opts = %+v, want %+v", opts, tt.want)
			}
		})
	}
}
