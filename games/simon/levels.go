/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package simon

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrInvalidLevel is returned when a level outside the supported tiers is
// requested. The game does not start.
var ErrInvalidLevel = errors.New("invalid level")

// levels maps each difficulty tier to the sequence length needed to win.
var levels = map[int]int{
	1: 8,
	2: 14,
	3: 20,
	4: 31,
}

// MaxLength returns the winning sequence length for level.
func MaxLength(level int) (int, error) {
	n, ok := levels[level]
	if !ok {
		return 0, fmt.Errorf("%w %d: please enter level 1, 2, 3, or 4", ErrInvalidLevel, level)
	}
	return n, nil
}

// LevelNumbers returns the supported tiers in ascending order.
func LevelNumbers() []int {
	return slices.Sorted(maps.Keys(levels))
}
