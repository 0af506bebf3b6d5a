package eventfilter

import "testing"

func TestParseAndEval(t *testing.T) {
	event := map[string]any{
		"Id":                          float64(12),
		"Name":                        "Diamond Gala",
		"ConfirmedRegistrationsCount": float64(8),
		"RegistrationEnabled":         true,
		"Tags":                        []any{"gala", "annual"},
		"Details": map[string]any{
			"Organizer": "Board",
		},
	}

	tests := []struct {
		query string
		want  bool
	}{
		{`ConfirmedRegistrationsCount > 5 and "Diamond" in Name`, true},
		{`ConfirmedRegistrationsCount > 10 or Id == 12`, true},
		{`ConfirmedRegistrationsCount >= 8 and ConfirmedRegistrationsCount <= 8`, true},
		{`ConfirmedRegistrationsCount < 8`, false},
		{`not RegistrationEnabled`, false},
		{`RegistrationEnabled == true`, true},
		{`"gala" in Tags`, true},
		{`"gala" not in Tags`, false},
		{`'Ruby' in Name`, false},
		{`(Id == 1 or Id == 12) and not (Name == "Other")`, true},
		{`Details.Organizer == "Board"`, true},
		{`Missing == "x"`, false},
		{`Missing`, false},
		{`Name != 'Diamond Gala'`, false},
		{`Id == -3`, false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			expr, err := Parse(tt.query)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			got, err := expr.Eval(event)
			if err != nil {
				t.Fatalf("Eval failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Eval = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	queries := []string{
		``,
		`Id ==`,
		`"unterminated`,
		`(Id == 1`,
		`Id == 1 extra`,
		`Id = 1`,
		`__import__("os") ; rm`,
		`and Id`,
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			if _, err := Parse(q); err == nil {
				t.Errorf("expected parse error for %q", q)
			}
		})
	}
}

func TestEval_TypeMismatch(t *testing.T) {
	expr, err := Parse(`Name > 5`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := expr.Eval(map[string]any{"Name": "Gala"}); err == nil {
		t.Error("expected type mismatch error")
	}
}
