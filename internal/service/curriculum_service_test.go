package service

import (
	"errors"
	"testing"

	"gorm.io/gorm"
)

func TestPlanShape(t *testing.T) {
	tests := []struct {
		name        string
		duration    string
		wantModules int
		wantLessons int
	}{
		{"short", "short", 1, 2},
		{"medium", "medium", 3, 3},
		{"long", "long", 5, 4},
		{"unknown falls back to medium", "whatever", 3, 3},
		{"empty falls back to medium", "", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			modules, lessons := PlanShape(tt.duration)
			if modules != tt.wantModules || lessons != tt.wantLessons {
				t.Errorf("PlanShape(%q) = (%d, %d), want (%d, %d)",
					tt.duration, modules, lessons, tt.wantModules, tt.wantLessons)
			}
		})
	}
}

func TestIsDuplicateKey(t *testing.T) {
	if isDuplicateKey(nil) {
		t.Error("nil error reported as duplicate key")
	}
	if !isDuplicateKey(gorm.ErrDuplicatedKey) {
		t.Error("gorm duplicated key error not detected")
	}
	if !isDuplicateKey(errors.New("Error 1062: Duplicate entry 'x' for key 'idx_roadmap_key'")) {
		t.Error("mysql duplicate entry message not detected")
	}
	if isDuplicateKey(errors.New("connection refused")) {
		t.Error("unrelated error reported as duplicate key")
	}
}
