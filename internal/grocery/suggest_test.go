package grocery

import "testing"

func TestSuggestSingleWords(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"milk", "Dairy"},
		{"chicken", "Meat & Seafood"},
		{"bread", "Bakery"},
		{"rice", "Pantry"},
		{"coffee", "Beverages"},
		{"chips", "Snacks"},
		{"shampoo", "Personal Care"},
		{"apples", "Produce"},
		{"tomatoes", "Produce"},
		{"strawberries", "Produce"},
		{"cookies", "Snacks"},
		{"pies", "Bakery"},
	}
	for _, tt := range tests {
		if got := Suggest(tt.input); got != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuggestPhrasesBeatWords(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ice cream", "Frozen"},
		{"peanut butter", "Pantry"},
		{"orange juice", "Beverages"},
		{"paper towels", "Household"},
		{"frozen pizza", "Frozen"},
		{"organic baby spinach", "Produce"},
		{"boneless chicken thighs", "Meat & Seafood"},
		{"whole wheat bread", "Bakery"},
		{"sparkling water bottles", "Beverages"},
	}
	for _, tt := range tests {
		if got := Suggest(tt.input); got != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuggestCaseAndPunctuation(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"MILK", "Dairy"},
		{"  Frozen Pizza ", "Frozen"},
		{"eggs (dozen)", "Dairy"},
		{"Band-Aids", "Personal Care"},
	}
	for _, tt := range tests {
		if got := Suggest(tt.input); got != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuggestFallback(t *testing.T) {
	for _, input := range []string{"", "   ", "widget", "123"} {
		if got := Suggest(input); got != Fallback {
			t.Errorf("Suggest(%q) = %q, want %q", input, got, Fallback)
		}
	}
}
