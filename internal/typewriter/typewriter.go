// Package typewriter reveals a line of text one rune at a time on the frame
// scheduler's clock. It holds state only; presenters read Visible and
// CursorAlpha when they draw.
package typewriter

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/canvasfx/internal/frame"
)

const vowels = "aeiouAEIOU"

// Options configure one typewriter. Each rune is followed by the vowel or
// consonant delay.
type Options struct {
	Text          string  `yaml:"text"`
	ConsonantMS   float64 `yaml:"consonant_ms"`
	VowelMS       float64 `yaml:"vowel_ms"`
	StartDelayMS  float64 `yaml:"start_delay_ms"`
	Cursor        bool    `yaml:"cursor"`
	CursorChar    string  `yaml:"cursor_char"`
	CursorPulseMS float64 `yaml:"cursor_pulse_ms"`
	// CursorHoldMS is how long the cursor stays after the text completes
	// before it fades out over CursorFadeMS.
	CursorHoldMS float64 `yaml:"cursor_hold_ms"`
	CursorFadeMS float64 `yaml:"cursor_fade_ms"`
}

func DefaultOptions() Options {
	return Options{
		ConsonantMS:   30,
		VowelMS:       70,
		Cursor:        true,
		CursorChar:    "|",
		CursorPulseMS: 500,
		CursorHoldMS:  2000,
		CursorFadeMS:  500,
	}
}

// Hooks are called on the scheduler goroutine.
type Hooks struct {
	OnStart    func()
	OnChar     func(r rune, typed int)
	OnComplete func()
}

type Typewriter struct {
	opt   Options
	hooks Hooks
	sched *frame.Scheduler
	log   zerolog.Logger

	text    []rune
	typed   int
	typing  bool
	paused  bool
	done    bool
	doneAt  time.Duration
	pending *frame.Timer
	gone    bool
}

// New arms the typewriter to start after StartDelayMS.
func New(s *frame.Scheduler, o Options, h Hooks, log zerolog.Logger) *Typewriter {
	tw := &Typewriter{
		opt:   o,
		hooks: h,
		sched: s,
		log:   log.With().Str("module", "typewriter").Logger(),
		text:  []rune(o.Text),
	}
	tw.pending = s.After(ms(o.StartDelayMS), tw.Start)
	return tw
}

func ms(v float64) time.Duration { return time.Duration(v * float64(time.Millisecond)) }

// Start begins typing from the current position. Starting while typing is
// a no-op.
func (tw *Typewriter) Start() {
	if tw.gone || tw.typing {
		return
	}
	tw.pending.Stop()
	tw.pending = nil
	tw.typing, tw.paused = true, false
	if tw.hooks.OnStart != nil {
		tw.hooks.OnStart()
	}
	tw.next()
}

// Pause holds the current position until Resume.
func (tw *Typewriter) Pause() {
	if !tw.typing || tw.paused {
		return
	}
	tw.paused = true
	tw.pending.Stop()
	tw.pending = nil
}

func (tw *Typewriter) Resume() {
	if !tw.paused {
		return
	}
	tw.paused = false
	tw.next()
}

// Stop halts typing. With complete the whole text is shown at once and
// OnComplete fires.
func (tw *Typewriter) Stop(complete bool) {
	tw.pending.Stop()
	tw.pending = nil
	tw.typing, tw.paused = false, false
	if complete && !tw.gone {
		tw.typed = len(tw.text)
		tw.finish()
	}
}

// Reset stops and clears the visible text. A non-nil text replaces the
// text to type.
func (tw *Typewriter) Reset(text *string) {
	tw.Stop(false)
	if text != nil {
		tw.text = []rune(*text)
	}
	tw.typed = 0
	tw.done = false
}

// Type resets to text and starts typing it.
func (tw *Typewriter) Type(text string) {
	tw.Reset(&text)
	tw.Start()
}

// Destroy stops for good and leaves the full text visible without a
// cursor.
func (tw *Typewriter) Destroy() {
	tw.Stop(false)
	tw.typed = len(tw.text)
	tw.gone = true
}

func (tw *Typewriter) next() {
	tw.pending = nil
	if !tw.typing || tw.paused {
		return
	}
	if tw.typed >= len(tw.text) {
		tw.typing = false
		tw.finish()
		return
	}
	r := tw.text[tw.typed]
	tw.typed++
	if tw.hooks.OnChar != nil {
		tw.hooks.OnChar(r, tw.typed)
	}
	tw.pending = tw.sched.After(tw.delay(r), tw.next)
}

func (tw *Typewriter) delay(r rune) time.Duration {
	if strings.ContainsRune(vowels, r) {
		return ms(tw.opt.VowelMS)
	}
	return ms(tw.opt.ConsonantMS)
}

func (tw *Typewriter) finish() {
	tw.done = true
	tw.doneAt = tw.sched.Now()
	tw.log.Debug().Int("runes", len(tw.text)).Msg("complete")
	if tw.hooks.OnComplete != nil {
		tw.hooks.OnComplete()
	}
}

// Visible is the text typed so far.
func (tw *Typewriter) Visible() string { return string(tw.text[:tw.typed]) }

// Typed is the number of runes shown.
func (tw *Typewriter) Typed() int { return tw.typed }

func (tw *Typewriter) Len() int { return len(tw.text) }

func (tw *Typewriter) Typing() bool { return tw.typing && !tw.paused }
func (tw *Typewriter) Paused() bool { return tw.paused }
func (tw *Typewriter) Done() bool   { return tw.done }

// CursorAlpha is the cursor opacity at now: blinking while in use, held
// after completion and then faded out.
func (tw *Typewriter) CursorAlpha(now time.Duration) float64 {
	if !tw.opt.Cursor || tw.gone {
		return 0
	}
	if tw.done {
		since := now - tw.doneAt - ms(tw.opt.CursorHoldMS)
		if since >= 0 {
			fade := ms(tw.opt.CursorFadeMS)
			if fade <= 0 || since >= fade {
				return 0
			}
			return 1 - float64(since)/float64(fade)
		}
	}
	period := ms(tw.opt.CursorPulseMS)
	if period <= 0 || (now%period) < period/2 {
		return 1
	}
	return 0
}

// Line is the visible text with the cursor glyph appended when it shows.
func (tw *Typewriter) Line(now time.Duration) string {
	s := tw.Visible()
	if tw.CursorAlpha(now) >= 0.5 {
		s += tw.opt.CursorChar
	}
	return s
}
