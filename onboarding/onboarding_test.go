package onboarding

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/neilotoole/slogt"
)

func TestScreen_Submit(t *testing.T) {
	tests := []struct {
		name       string
		locale     Locale
		input      string
		wantReason Reason
		wantNav    *navigation
		wantAlert  *alert
	}{
		{
			name:    "Valid",
			locale:  English,
			input:   "ValidName",
			wantNav: &navigation{screen: "MainEN", params: map[string]any{"username": "ValidName"}},
		},
		{
			name:    "Trimmed",
			locale:  English,
			input:   "  Alice  ",
			wantNav: &navigation{screen: "MainEN", params: map[string]any{"username": "Alice"}},
		},
		{
			name:    "ShortestValid",
			locale:  English,
			input:   "abcd",
			wantNav: &navigation{screen: "MainEN", params: map[string]any{"username": "abcd"}},
		},
		{
			name:    "LongestValid",
			locale:  English,
			input:   strings.Repeat("x", 15),
			wantNav: &navigation{screen: "MainEN", params: map[string]any{"username": strings.Repeat("x", 15)}},
		},
		{
			name:       "TooShortAfterTrim",
			locale:     English,
			input:      "   ab   ",
			wantReason: TooShort,
			wantAlert:  &alert{title: "Error", message: "Please enter your name with at least 4 characters."},
		},
		{
			name:       "Blank",
			locale:     English,
			input:      "     ",
			wantReason: TooShort,
			wantAlert:  &alert{title: "Error", message: "Please enter your name with at least 4 characters."},
		},
		{
			name:       "TooLong",
			locale:     English,
			input:      strings.Repeat("x", 16),
			wantReason: TooLong,
			wantAlert:  &alert{title: "Error", message: "Please enter your name within 15 characters."},
		},
		{
			name:    "Japanese",
			locale:  Japanese,
			input:   "さくらさん",
			wantNav: &navigation{screen: "MainJA", params: map[string]any{"username": "さくらさん"}},
		},
		{
			name:       "JapaneseTooShort",
			locale:     Japanese,
			input:      "さくら",
			wantReason: TooShort,
			wantAlert:  &alert{title: "エラー", message: "名前は4文字以上で入力してください。"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := &testnav{}
			alerter := &testalerter{}
			s := NewScreen(tt.locale, nav, alerter, slogt.New(t))

			err := s.Submit(tt.input)

			if tt.wantReason != 0 {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("Submit() error = %v, want a ValidationError", err)
				}
				if verr.Reason != tt.wantReason {
					t.Errorf("Got reason %v, want %v", verr.Reason, tt.wantReason)
				}
			} else if err != nil {
				t.Fatalf("Submit() unexpected error: %v", err)
			}

			if diff := cmp.Diff(tt.wantNav, nav.last(), cmp.AllowUnexported(navigation{})); diff != "" {
				t.Errorf("Navigation mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantAlert, alerter.last(), cmp.AllowUnexported(alert{})); diff != "" {
				t.Errorf("Alert mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate_Lengths(t *testing.T) {
	for n := 0; n <= 20; n++ {
		name := strings.Repeat("a", n)
		got, err := Validate(" " + name + "\t")
		switch {
		case n < 4:
			assertReason(t, n, err, TooShort)
		case n > 15:
			assertReason(t, n, err, TooLong)
		default:
			if err != nil || got != name {
				t.Errorf("Validate(len %d) = %q, %v; want %q, nil", n, got, err, name)
			}
		}
	}
}

func assertReason(t *testing.T, n int, err error, want Reason) {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Reason != want {
		t.Errorf("Validate(len %d) error = %v, want %v", n, err, want)
	}
}

func TestScreen_SwitchLanguage(t *testing.T) {
	tests := []struct {
		locale Locale
		want   string
	}{
		{English, "WelcomeJA"},
		{Japanese, "WelcomeEN"},
	}
	for _, tt := range tests {
		t.Run(tt.locale.Name, func(t *testing.T) {
			nav := &testnav{}
			alerter := &testalerter{}
			s := NewScreen(tt.locale, nav, alerter, slogt.New(t))
			s.SwitchLanguage()

			got := nav.last()
			if got == nil || got.screen != tt.want || got.params != nil {
				t.Errorf("Got navigation %+v, want %s without params", got, tt.want)
			}
			if alerter.last() != nil {
				t.Error("Language switch raised an alert")
			}
		})
	}
}

func TestLookupLocale(t *testing.T) {
	for _, name := range []string{"", "en", "EN"} {
		if l, err := LookupLocale(name); err != nil || l.Name != "en" {
			t.Errorf("LookupLocale(%q) = %v, %v", name, l.Name, err)
		}
	}
	if l, err := LookupLocale("ja"); err != nil || l.Name != "ja" {
		t.Errorf("LookupLocale(ja) = %v, %v", l.Name, err)
	}
	if _, err := LookupLocale("fr"); err == nil {
		t.Error("LookupLocale(fr) expected an error")
	}
}

func TestLocale_PromptText(t *testing.T) {
	tests := []struct {
		locale Locale
		want   string
	}{
		{English, "Enter your name (/lang for 日本語): "},
		{Japanese, "名前を入力してください（/lang で English）: "},
	}
	for _, tt := range tests {
		t.Run(tt.locale.Name, func(t *testing.T) {
			if got := tt.locale.PromptText(); got != tt.want {
				t.Errorf("PromptText() = %q, want %q", got, tt.want)
			}
			if tt.locale.Banner == "" {
				t.Error("Banner is empty")
			}
		})
	}
}

type navigation struct {
	screen string
	params map[string]any
}

type testnav struct {
	calls []navigation
}

func (n *testnav) Replace(screenID string, params map[string]any) {
	n.calls = append(n.calls, navigation{screen: screenID, params: params})
}

func (n *testnav) last() *navigation {
	if len(n.calls) == 0 {
		return nil
	}
	return &n.calls[len(n.calls)-1]
}

type alert struct {
	title   string
	message string
}

type testalerter struct {
	calls []alert
}

func (a *testalerter) Alert(title, message string) {
	a.calls = append(a.calls, alert{title: title, message: message})
}

func (a *testalerter) last() *alert {
	if len(a.calls) == 0 {
		return nil
	}
	return &a.calls[len(a.calls)-1]
}
