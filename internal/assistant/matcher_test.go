package assistant

import (
	"testing"

	"github.com/ozelders/ozelders-api/internal/storage"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses whitespace", "  Ahmet   Yılmaz  ", "ahmet yılmaz"},
		{"dotted capital I folds to i", "İsmail", "ismail"},
		{"dotless capital I folds to ı", "IŞIL", "ışıl"},
		{"mixed", "Öğrenci  İREM", "öğrenci irem"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFindStudent(t *testing.T) {
	roster := []storage.RosterEntry{
		{ID: "1", Name: "Ahmet Yılmaz"},
		{ID: "2", Name: "İsmail Demir"},
		{ID: "3", Name: "Ahmet Kaya"},
	}

	tests := []struct {
		name   string
		query  string
		wantID string
	}{
		{"substring match", "ahmet", "1"},
		{"first match wins on ties", "Ahmet", "1"},
		{"surname fragment", "kaya", "3"},
		{"dotted I query against dotted I name", "ismail", "2"},
		{"uppercase dotted I query", "İSMAİL", "2"},
		{"no match", "zeynep", ""},
		{"empty query", "", ""},
		{"whitespace query", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindStudent(tt.query, roster)
			if tt.wantID == "" {
				if got != nil {
					t.Errorf("FindStudent(%q) = %v, want nil", tt.query, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("FindStudent(%q) = nil, want id %s", tt.query, tt.wantID)
			}
			if got.ID != tt.wantID {
				t.Errorf("FindStudent(%q) = id %s, want %s", tt.query, got.ID, tt.wantID)
			}
		})
	}
}

func TestFilterStudents(t *testing.T) {
	roster := []storage.RosterEntry{
		{ID: "1", Name: "Ahmet Yılmaz"},
		{ID: "2", Name: "Zeynep Kaya"},
		{ID: "3", Name: "İsmail Demir"},
	}

	t.Run("partial match set", func(t *testing.T) {
		got := FilterStudents([]string{"Ahmet", "Zeynep"}, roster)
		if len(got) != 2 {
			t.Fatalf("expected 2 matches, got %d", len(got))
		}
		if got[0].ID != "1" || got[1].ID != "2" {
			t.Errorf("expected roster order [1, 2], got [%s, %s]", got[0].ID, got[1].ID)
		}
	})

	t.Run("unmatched names are skipped silently", func(t *testing.T) {
		got := FilterStudents([]string{"Ahmet", "Deniz"}, roster)
		if len(got) != 1 {
			t.Fatalf("expected 1 match, got %d", len(got))
		}
		if got[0].ID != "1" {
			t.Errorf("expected id 1, got %s", got[0].ID)
		}
	})

	t.Run("entry appears once even with overlapping fragments", func(t *testing.T) {
		got := FilterStudents([]string{"ahmet", "yılmaz"}, roster)
		if len(got) != 1 {
			t.Fatalf("expected 1 match, got %d", len(got))
		}
	})

	t.Run("empty fragments yield nothing", func(t *testing.T) {
		if got := FilterStudents([]string{"", "  "}, roster); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})
}
