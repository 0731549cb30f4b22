package core

import (
	"errors"
	"testing"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{name: "free text", input: "01/03/2024", want: NewDate(2024, 3, 1)},
		{name: "picker value", input: "2024-03-01", want: NewDate(2024, 3, 1)},
		{name: "trimmed", input: " 15/12/2023 ", want: NewDate(2023, 12, 15)},
		{name: "empty", input: "", wantErr: true},
		{name: "partial text", input: "15/12", wantErr: true},
		{name: "month out of range", input: "01/13/2024", wantErr: true},
		{name: "garbage", input: "next tuesday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want.Time) {
				t.Fatalf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveDate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		picker  string
		want    Date
		wantErr bool
	}{
		{
			name: "text wins when both set",
			text: "05/03/2024", picker: "2024-03-09",
			want: NewDate(2024, 3, 5),
		},
		{
			name: "picker used when text empty",
			text: "", picker: "2024-03-09",
			want: NewDate(2024, 3, 9),
		},
		{
			name: "unparseable text falls back to picker",
			text: "03/202", picker: "2024-03-09",
			want: NewDate(2024, 3, 9),
		},
		{
			name: "unparseable text and no picker",
			text: "03/202", picker: "",
			wantErr: true,
		},
		{
			name: "both empty",
			text: "", picker: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDate(tt.text, tt.picker)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDate) {
					t.Fatalf("ResolveDate(%q, %q) = %v, want ErrInvalidDate", tt.text, tt.picker, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveDate(%q, %q) unexpected error: %v", tt.text, tt.picker, err)
			}
			if !got.Equal(tt.want.Time) {
				t.Fatalf("ResolveDate(%q, %q) = %v, want %v", tt.text, tt.picker, got, tt.want)
			}
		})
	}
}

func TestDate_Roundtrip(t *testing.T) {
	d := NewDate(2024, 3, 1)
	if d.Text() != "01/03/2024" {
		t.Errorf("Text() = %q, want 01/03/2024", d.Text())
	}
	if d.ISO() != "2024-03-01" {
		t.Errorf("ISO() = %q, want 2024-03-01", d.ISO())
	}
}
