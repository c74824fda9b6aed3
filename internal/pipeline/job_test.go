package pipeline

import (
	"reflect"
	"testing"

	"github.com/timmy/batchpub/internal/sheet"
)

func TestBuildJob(t *testing.T) {
	header := []string{"id", "seo_title_zh", "seo_title_en", "seo_description_zh", "seo_description_en", "tags", "hashtags"}
	idx, _, err := sheet.ResolveHeader(header, sheet.DefaultLabels())
	if err != nil {
		t.Fatalf("ResolveHeader: %v", err)
	}

	tests := []struct {
		name     string
		row      []string
		wantTit  string
		wantDesc string
		wantTags []string
	}{
		{
			name:     "all fields",
			row:      []string{" 7 ", "标题", "Title", "描述", "Desc", "a, b,,c ", "#x #y"},
			wantTit:  "标题 / Title",
			wantDesc: "描述\n\nDesc\n\n#x #y",
			wantTags: []string{"a", "b", "c"},
		},
		{
			name:     "secondary only",
			row:      []string{"7", "", "Title", "", "Desc"},
			wantTit:  "Title",
			wantDesc: "Desc",
		},
		{
			name:     "title falls back to identifier",
			row:      []string{"7", " ", "", "", "", "", "#only"},
			wantTit:  "7",
			wantDesc: "#only",
		},
		{
			name:    "short row",
			row:     []string{"7"},
			wantTit: "7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := BuildJob(3, tt.row, idx)
			if job.Identifier != "7" || job.Row != 3 {
				t.Errorf("identifier=%q row=%d", job.Identifier, job.Row)
			}
			if job.Title != tt.wantTit {
				t.Errorf("title = %q, want %q", job.Title, tt.wantTit)
			}
			if job.Description != tt.wantDesc {
				t.Errorf("description = %q, want %q", job.Description, tt.wantDesc)
			}
			if !reflect.DeepEqual(job.Tags, tt.wantTags) {
				t.Errorf("tags = %#v, want %#v", job.Tags, tt.wantTags)
			}
			if job.Slot != -1 || job.PublishAt != nil {
				t.Errorf("a fresh job must not hold a slot")
			}
		})
	}
}

func TestBuildJob_MissingOptionalColumns(t *testing.T) {
	idx, _, err := sheet.ResolveHeader([]string{"id"}, sheet.DefaultLabels())
	if err != nil {
		t.Fatalf("ResolveHeader: %v", err)
	}
	job := BuildJob(1, []string{"42"}, idx)
	if job.Title != "42" || job.Description != "" || len(job.Tags) != 0 {
		t.Errorf("unexpected job %+v", job)
	}
}
