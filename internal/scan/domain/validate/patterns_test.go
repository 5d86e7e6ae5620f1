package validate

import "testing"

func TestValidNINumber(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "valid", value: "AB123456C", want: true},
		{name: "valid lowercase", value: "ab123456c", want: true},
		{name: "valid with spaces", value: "AB 12 34 56 C", want: true},
		{name: "blank", value: "", want: false},
		{name: "too short", value: "AB12345C", want: false},
		{name: "bad suffix", value: "AB123456E", want: false},
		{name: "first letter D", value: "DB123456C", want: false},
		{name: "second letter O", value: "AO123456C", want: false},
		{name: "reserved prefix BG", value: "BG123456C", want: false},
		{name: "reserved prefix GB", value: "GB123456C", want: false},
		{name: "reserved prefix NK", value: "NK123456C", want: false},
		{name: "reserved prefix KN", value: "KN123456C", want: false},
		{name: "reserved prefix TN", value: "TN123456C", want: false},
		{name: "reserved prefix NT", value: "NT123456C", want: false},
		{name: "reserved prefix ZZ", value: "ZZ123456C", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidNINumber(tc.value); got != tc.want {
				t.Fatalf("ValidNINumber(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestValidPostcode(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "standard", value: "SW1A 1AA", want: true},
		{name: "no space", value: "SW1A1AA", want: true},
		{name: "short outward", value: "B1 1AA", want: true},
		{name: "lowercase", value: "b1 1aa", want: true},
		{name: "blank", value: "", want: false},
		{name: "inward too short", value: "SW1A 1A", want: false},
		{name: "not a postcode", value: "12345", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidPostcode(tc.value); got != tc.want {
				t.Fatalf("ValidPostcode(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}
