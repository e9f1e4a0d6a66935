package sequence

import "github.com/coreman2200/canvasfx/internal/vmath"

// CycleProgram builds an endlessly looping program that forms each pattern
// in turn. interval is the time from one form to the next; the hold range
// is narrowed by the morph range so morph plus hold stays close to it.
func CycleProgram(patterns []string, morph, interval vmath.Range, leadS float64, seed uint64) Program {
	hold := vmath.Range{Min: max(interval.Min-morph.Max, 0), Max: max(interval.Max-morph.Min, 0)}
	prog := Program{Loop: true, Seed: seed, LeadS: leadS}
	for _, name := range patterns {
		prog.Clips = append(prog.Clips, Clip{Name: name, Pattern: name, MorphS: morph, HoldS: hold})
	}
	return prog
}
