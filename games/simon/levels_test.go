package simon

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestMaxLength(t *testing.T) {
	tests := []struct {
		level   int
		want    int
		wantErr bool
	}{
		{level: 1, want: 8},
		{level: 2, want: 14},
		{level: 3, want: 20},
		{level: 4, want: 31},
		{level: 0, wantErr: true},
		{level: 5, wantErr: true},
		{level: -4, wantErr: true},
	}

	for _, tt := range tests {
		got, err := MaxLength(tt.level)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidLevel) {
				t.Errorf("MaxLength(%d) error = %v, want ErrInvalidLevel", tt.level, err)
			}
			if err != nil && !strings.Contains(err.Error(), "please enter level 1, 2, 3, or 4") {
				t.Errorf("MaxLength(%d) error text = %q", tt.level, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("MaxLength(%d) error: %v", tt.level, err)
		}
		if got != tt.want {
			t.Errorf("MaxLength(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestLevelNumbers(t *testing.T) {
	if got := LevelNumbers(); !reflect.DeepEqual(got, []int{1, 2, 3, 4}) {
		t.Fatalf("LevelNumbers() = %v", got)
	}
}
