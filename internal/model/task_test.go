package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestCreateTaskRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateTaskRequest
		wantErr error
	}{
		{"plain task", CreateTaskRequest{Text: "buy milk"}, nil},
		{"empty text", CreateTaskRequest{Text: ""}, ErrTextRequired},
		{"whitespace only", CreateTaskRequest{Text: "   \t  "}, ErrTextRequired},
		{"exactly 200 chars", CreateTaskRequest{Text: strings.Repeat("a", 200)}, nil},
		{"201 chars", CreateTaskRequest{Text: strings.Repeat("a", 201)}, ErrTextTooLong},
		{"padded over limit trims to valid", CreateTaskRequest{Text: "  " + strings.Repeat("a", 200) + "  "}, nil},
		{"recurring with pattern", CreateTaskRequest{Text: "gym", IsRecurring: true, RecurrencePattern: strPtr("weekly")}, nil},
		{"recurring without pattern", CreateTaskRequest{Text: "gym", IsRecurring: true}, ErrPatternRequired},
		{"recurring with bad pattern", CreateTaskRequest{Text: "gym", IsRecurring: true, RecurrencePattern: strPtr("hourly")}, ErrInvalidPattern},
		{"pattern without recurring", CreateTaskRequest{Text: "gym", RecurrencePattern: strPtr("weekly")}, ErrPatternNotRecurring},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !errors.Is(err, tt.wantErr) && err != tt.wantErr {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateTaskRequest_ValidateTrims(t *testing.T) {
	req := CreateTaskRequest{Text: "  buy milk  "}
	if err := req.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if req.Text != "buy milk" {
		t.Errorf("text = %q, want trimmed", req.Text)
	}
}

func TestUpdateTaskRequest_Validate(t *testing.T) {
	long := strings.Repeat("a", 201)
	blank := "   "
	bad := "hourly"
	good := "monthly"

	if err := (&UpdateTaskRequest{Text: &long}).Validate(); err != ErrTextTooLong {
		t.Errorf("long text: got %v, want ErrTextTooLong", err)
	}
	if err := (&UpdateTaskRequest{Text: &blank}).Validate(); err != ErrTextRequired {
		t.Errorf("blank text: got %v, want ErrTextRequired", err)
	}
	if err := (&UpdateTaskRequest{RecurrencePattern: &bad}).Validate(); err != ErrInvalidPattern {
		t.Errorf("bad pattern: got %v, want ErrInvalidPattern", err)
	}
	if err := (&UpdateTaskRequest{RecurrencePattern: &good}).Validate(); err != nil {
		t.Errorf("good pattern: got %v, want nil", err)
	}
	if err := (&UpdateTaskRequest{}).Validate(); err != nil {
		t.Errorf("empty update: got %v, want nil", err)
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(time.Date(2024, 3, 10, 17, 45, 0, 0, time.UTC))

	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"2024-03-10"` {
		t.Errorf("marshal = %s, want \"2024-03-10\"", raw)
	}

	var parsed Date
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !parsed.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("round trip = %v", parsed)
	}
}

func TestDate_UnmarshalRejectsBadInput(t *testing.T) {
	for _, raw := range []string{`"10/03/2024"`, `"2024-13-01"`, `42`, `""`} {
		var d Date
		if err := json.Unmarshal([]byte(raw), &d); err == nil {
			t.Errorf("unmarshal %s succeeded, want error", raw)
		}
	}
}

func TestUpdatePreferenceRequest_Validate(t *testing.T) {
	if err := (&UpdatePreferenceRequest{Theme: ThemeLight}).Validate(); err != nil {
		t.Errorf("light: %v", err)
	}
	if err := (&UpdatePreferenceRequest{Theme: "solarized"}).Validate(); err != ErrInvalidTheme {
		t.Errorf("unknown theme: got %v, want ErrInvalidTheme", err)
	}
}
