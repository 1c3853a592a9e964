package model

import "testing"

func TestVisitStatusBuilderSettable(t *testing.T) {
	settable := map[VisitStatus]bool{
		VisitRequested: false,
		VisitConfirmed: true,
		VisitCancelled: true,
		VisitCompleted: true,
		"Agendado":     false,
	}
	for status, want := range settable {
		if got := status.BuilderSettable(); got != want {
			t.Errorf("BuilderSettable(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestVisitStatusTerminal(t *testing.T) {
	if VisitRequested.Terminal() || VisitConfirmed.Terminal() {
		t.Errorf("open visit statuses must not be terminal")
	}
	if !VisitCancelled.Terminal() || !VisitCompleted.Terminal() {
		t.Errorf("cancelled and completed visits are terminal")
	}
}
