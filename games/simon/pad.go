/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package simon

import (
	"math/rand/v2"
	"strings"
)

// Pad identifies one of the colored pads on the board.
type Pad string

const (
	Red    Pad = "red"
	Green  Pad = "green"
	Blue   Pad = "blue"
	Yellow Pad = "yellow"
)

// Pads lists every pad in board order.
var Pads = []Pad{Red, Green, Blue, Yellow}

// Valid reports whether p is one of the known pads.
func (p Pad) Valid() bool {
	switch p {
	case Red, Green, Blue, Yellow:
		return true
	}
	return false
}

func (p Pad) String() string { return string(p) }

// ParsePad maps a color name from a client onto a Pad.
func ParsePad(name string) (Pad, bool) {
	p := Pad(strings.ToLower(strings.TrimSpace(name)))
	if !p.Valid() {
		return "", false
	}
	return p, true
}

// Randomizer chooses the pad appended to the target sequence each round.
type Randomizer interface {
	PickPad() Pad
}

// RandomizerFunc adapts a plain function to the Randomizer interface.
type RandomizerFunc func() Pad

func (f RandomizerFunc) PickPad() Pad { return f() }

type pcgRandomizer struct {
	rng *rand.Rand
}

// NewRandomizer returns a Randomizer drawing uniformly from Pads, with
// replacement. A seed of 0 picks a random seed.
func NewRandomizer(seed uint64) Randomizer {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &pcgRandomizer{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (r *pcgRandomizer) PickPad() Pad {
	return Pads[r.rng.IntN(len(Pads))]
}
