package router

import (
	"context"
	"testing"

	"medirouter/models"
)

func TestKeywordClassifierPriorityOrder(t *testing.T) {
	c := &KeywordClassifier{Fallback: true}

	cases := []struct {
		name string
		text string
		want models.Intent
	}{
		{"plain booking", "I want to book an appointment with Dr. Lee", models.IntentBooking},
		{"plain comparison", "compare hospitals near me by cost", models.IntentComparison},
		{"plain emergency", "I need an ambulance right now", models.IntentEmergency},
		{"plain diagnostic", "how much is a blood test", models.IntentDiagnostic},
		{"fallback", "tell me about hospitals in Ohio", models.IntentGeneral},
		{"booking beats comparison", "book the best hospital, compare them first", models.IntentBooking},
		{"comparison beats emergency", "compare emergency departments", models.IntentComparison},
		{"emergency beats diagnostic", "urgent: need an x-ray now", models.IntentEmergency},
		{"case insensitive", "BOOK me a SLOT", models.IntentBooking},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Classify(context.Background(), tc.text)
			if err != nil {
				t.Fatalf("classify: %v", err)
			}
			if got != tc.want {
				t.Fatalf("classify(%q) = %s, want %s", tc.text, got, tc.want)
			}
		})
	}
}

func TestKeywordClassifierIsDeterministic(t *testing.T) {
	c := &KeywordClassifier{Fallback: true}
	text := "please book a slot and also compare the labs"

	first, err := c.Classify(context.Background(), text)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	for i := 0; i < 100; i++ {
		got, err := c.Classify(context.Background(), text)
		if err != nil {
			t.Fatalf("classify: %v", err)
		}
		if got != first {
			t.Fatalf("classification changed between runs: %s then %s", first, got)
		}
	}
	if first != models.IntentBooking {
		t.Fatalf("booking keywords must win, got %s", first)
	}
}

func TestKeywordClassifierWithoutFallback(t *testing.T) {
	c := &KeywordClassifier{Fallback: false}

	if _, err := c.Classify(context.Background(), "hello there"); !IsAmbiguous(err) {
		t.Fatalf("expected AmbiguousIntent, got %v", err)
	}
}

func TestClampIntent(t *testing.T) {
	cases := []struct {
		answer   string
		fallback bool
		want     models.Intent
		wantErr  bool
	}{
		{"booking", false, models.IntentBooking, false},
		{"The intent is: comparison.", false, models.IntentComparison, false},
		{"emergency", false, models.IntentEmergency, false},
		{"diagnostic lookup", false, models.IntentDiagnostic, false},
		{"booking or comparison", false, models.IntentBooking, false}, // priority resolves
		{"no idea", true, models.IntentGeneral, false},
		{"no idea", false, "", true},
	}

	for _, tc := range cases {
		got, err := clampIntent(tc.answer, tc.fallback)
		if tc.wantErr {
			if !IsAmbiguous(err) {
				t.Fatalf("clampIntent(%q) expected AmbiguousIntent, got %v", tc.answer, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("clampIntent(%q): %v", tc.answer, err)
		}
		if got != tc.want {
			t.Fatalf("clampIntent(%q) = %s, want %s", tc.answer, got, tc.want)
		}
	}
}
