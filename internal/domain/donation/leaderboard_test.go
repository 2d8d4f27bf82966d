package donation

import (
	"encoding/json"
	"testing"

	"github.com/geocoder89/reliefhub/internal/store"
)

func TestLeaderboard(t *testing.T) {
	tests := []struct {
		name      string
		donations []store.Document
		want      []Entry
	}{
		{
			name:      "empty",
			donations: nil,
			want:      []Entry{},
		},
		{
			name: "distinct_totals_sort_descending",
			donations: []store.Document{
				{"email": "b", "quantity": 3.0},
				{"email": "a", "quantity": 5.0},
			},
			want: []Entry{
				{Email: "a", TotalQuantity: 5},
				{Email: "b", TotalQuantity: 3},
			},
		},
		{
			name: "ties_keep_first_appearance",
			donations: []store.Document{
				{"email": "a", "quantity": 3.0},
				{"email": "b", "quantity": 5.0},
				{"email": "a", "quantity": 2.0},
			},
			want: []Entry{
				{Email: "a", TotalQuantity: 5},
				{Email: "b", TotalQuantity: 5},
			},
		},
		{
			name: "name_and_category_from_first_record",
			donations: []store.Document{
				{"email": "a", "name": "Ada", "category": "food", "quantity": 1.0},
				{"email": "a", "name": "Ada L.", "category": "clothes", "quantity": 4.0},
			},
			want: []Entry{
				{Name: "Ada", Email: "a", Category: "food", TotalQuantity: 5},
			},
		},
		{
			name: "mixed_numeric_types_and_missing_quantity",
			donations: []store.Document{
				{"email": "a", "quantity": int32(2)},
				{"email": "a", "quantity": int64(3)},
				{"email": "a"},
				{"email": "a", "quantity": "7"},
			},
			want: []Entry{
				{Email: "a", TotalQuantity: 5},
			},
		},
		{
			name: "number_and_numeric_string_share_a_row",
			donations: []store.Document{
				{"email": 1.0, "quantity": 2.0},
				{"email": "1", "quantity": 3.0},
			},
			want: []Entry{
				{Email: 1.0, TotalQuantity: 5},
			},
		},
		{
			name: "null_and_null_string_share_a_row",
			donations: []store.Document{
				{"email": nil, "quantity": 1.0},
				{"email": "null", "quantity": 1.0},
			},
			want: []Entry{
				{Email: nil, TotalQuantity: 2},
			},
		},
		{
			name: "missing_email_is_not_null",
			donations: []store.Document{
				{"quantity": 1.0},
				{"email": nil, "quantity": 1.0},
				{"quantity": 2.0},
			},
			want: []Entry{
				{Email: nil, TotalQuantity: 3},
				{Email: nil, TotalQuantity: 1},
			},
		},
		{
			name: "index_like_emails_lead_ties",
			donations: []store.Document{
				{"email": "b", "quantity": 1.0},
				{"email": "10", "quantity": 1.0},
				{"email": 2.0, "quantity": 1.0},
				{"email": "01", "quantity": 1.0},
			},
			want: []Entry{
				{Email: 2.0, TotalQuantity: 1},
				{Email: "10", TotalQuantity: 1},
				{Email: "b", TotalQuantity: 1},
				{Email: "01", TotalQuantity: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Leaderboard(tt.donations)

			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("entry %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLeaderboardEncodesAsArray(t *testing.T) {
	b, err := json.Marshal(Leaderboard(nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "[]" {
		t.Fatalf("got %s", b)
	}
}

func TestTotalAmount(t *testing.T) {
	donations := []store.Document{
		{"amount": 10.0},
		{"amount": 5.0},
		{"amount": 7.0},
	}

	if got := TotalAmount(donations); got != 22 {
		t.Fatalf("got %v, want 22", got)
	}

	if got := TotalAmount(append(donations, store.Document{"amount": "x"}, store.Document{})); got != 22 {
		t.Fatalf("non-numeric amounts should add nothing, got %v", got)
	}

	if got := TotalAmount(nil); got != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestNumber(t *testing.T) {
	if Number(json.Number("2.5")) != 2.5 {
		t.Fatalf("json.Number")
	}
	if Number(json.Number("nope")) != 0 {
		t.Fatalf("bad json.Number")
	}
	if Number(float32(1.5)) != 1.5 || Number(3) != 3 {
		t.Fatalf("plain numbers")
	}
}

func TestGroupKey(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"a@b.c", "a@b.c"},
		{nil, "null"},
		{true, "true"},
		{1.0, "1"},
		{int32(7), "7"},
		{int64(42), "42"},
		{1.5, "1.5"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{json.Number("3"), "3"},
		{map[string]any{"x": 1.0}, "[object Object]"},
		{[]any{"a", nil, 2.0}, "a,,2"},
	}

	for _, tt := range tests {
		if got := groupKey(tt.in, true); got != tt.want {
			t.Fatalf("groupKey(%#v): got %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := groupKey(nil, false); got != "undefined" {
		t.Fatalf("missing email: got %q", got)
	}
}
