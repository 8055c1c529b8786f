package money

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"10.50", "10.50"},
		{"10,50", "10.50"},
		{"0,01", "0.01"},
		{"100", "100"},
		{"$10.50", "10.50"},
		{"€10,50", "10.50"},
		{"12,34 zł", "12.34"},
		{"12,34 zl", "12.34"},
		{"100 zl", "100"},
		{"1,234.56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"1 234,56", "1234.56"},
		{"1,000", "1000"},
		{"10,000.00", "10000.00"},
		{"$ 1,234.56", "1234.56"},
		{"1 234,56 €", "1234.56"},
		{"  $  100.50  ", "100.50"},
		{"-10,50", "-10.50"},
		{"- $10.50", "-10.50"},
		{"-€ 100,25", "-100.25"},
		{"- 1,234.56", "-1234.56"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}

	t.Run("empty", func(t *testing.T) {
		for _, in := range []string{"", "   "} {
			if _, err := Parse(in); !errors.Is(err, ErrEmpty) {
				t.Errorf("Parse(%q): expected ErrEmpty, got %v", in, err)
			}
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, in := range []string{"abc", "...", "currency only €"} {
			if _, err := Parse(in); !errors.Is(err, ErrInvalid) {
				t.Errorf("Parse(%q): expected ErrInvalid, got %v", in, err)
			}
		}
	})
}

func TestAmountUnmarshalJSON(t *testing.T) {
	var body struct {
		Number Amount  `json:"number"`
		Text   Amount  `json:"text"`
		Absent *Amount `json:"absent"`
	}
	if err := json.Unmarshal([]byte(`{"number": 12.5, "text": "1 234,56 €"}`), &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !body.Number.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("expected 12.5, got %s", body.Number)
	}
	if !body.Text.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("expected 1234.56, got %s", body.Text)
	}
	if body.Absent.Ptr() != nil {
		t.Error("expected nil pointer for absent amount")
	}

	t.Run("rejects_garbage", func(t *testing.T) {
		var a Amount
		if err := json.Unmarshal([]byte(`"abc"`), &a); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestFormatter(t *testing.T) {
	t.Run("usd", func(t *testing.T) {
		f, err := NewFormatter("USD", "en_US")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := f.Format(decimal.RequireFromString("1234.5"))
		if !strings.HasPrefix(got, "$") || !strings.HasSuffix(got, "234.50") {
			t.Errorf("unexpected format %q", got)
		}
		if f.Currency() != "USD" {
			t.Errorf("expected USD, got %s", f.Currency())
		}
	})

	t.Run("negative_sign_precedes_symbol", func(t *testing.T) {
		f, err := NewFormatter("USD", "en-US")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := f.Format(decimal.RequireFromString("-5"))
		if !strings.HasPrefix(got, "-$") || !strings.HasSuffix(got, "5.00") {
			t.Errorf("unexpected format %q", got)
		}
	})

	t.Run("unknown_currency", func(t *testing.T) {
		if _, err := NewFormatter("XYZ", "en_US"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("bad_locale", func(t *testing.T) {
		if _, err := NewFormatter("USD", "not a locale!"); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestValidators(t *testing.T) {
	for _, code := range []string{"USD", "EUR", "PLN", "JPY"} {
		if !ValidCurrency(code) {
			t.Errorf("%s should be valid", code)
		}
	}
	for _, code := range []string{"", "US", "XYZ", "DOLLAR"} {
		if ValidCurrency(code) {
			t.Errorf("%q should be invalid", code)
		}
	}
	if !ValidLocale("pl_PL") || !ValidLocale("en-US") {
		t.Error("expected locales to be valid")
	}
	if ValidLocale("") || ValidLocale("not a locale!") {
		t.Error("expected locales to be invalid")
	}
}
