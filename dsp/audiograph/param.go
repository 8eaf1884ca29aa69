package audiograph

import (
	"math"
	"sort"
)

type eventKind int

const (
	eventSet eventKind = iota
	eventRamp
)

type paramEvent struct {
	kind  eventKind
	time  float64
	value float64
}

// Param is an automatable value. Without events it holds a fixed value;
// scheduled events change it at given context times. Values are clamped to
// [min, max] on read.
//
// A linear ramp interpolates from the previous event (or the last value
// that was reached) to its own target, ending at its own time.
//
// Param is not safe for concurrent use; mutate it inside a context's Do.
type Param struct {
	min, max float64

	// anchor is the last event that was consumed.
	anchorTime  float64
	anchorValue float64
	events      []paramEvent
}

// NewParam returns a param holding value within [min, max].
func NewParam(value, min, max float64) *Param {
	return &Param{min: min, max: max, anchorValue: value}
}

// SetValue drops all automation and sets value immediately.
func (p *Param) SetValue(value float64) {
	p.events = p.events[:0]
	p.anchorValue = value
}

// Value returns the value reached at the last consumed event.
func (p *Param) Value() float64 {
	return p.clamp(p.anchorValue)
}

// SetValueAtTime schedules a step to value at time t.
func (p *Param) SetValueAtTime(value, t float64) {
	p.insert(paramEvent{kind: eventSet, time: t, value: value})
}

// LinearRampToValueAtTime schedules a linear ramp reaching value at time t.
func (p *Param) LinearRampToValueAtTime(value, t float64) {
	p.insert(paramEvent{kind: eventRamp, time: t, value: value})
}

// CancelScheduledValues removes every event at or after t.
func (p *Param) CancelScheduledValues(t float64) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time >= t })
	p.events = p.events[:i]
}

// RampTo moves the param from its value at now to target over duration
// seconds, replacing any automation after now. A zero duration steps
// immediately.
func (p *Param) RampTo(target, now, duration float64) {
	current := p.ValueAt(now)
	p.CancelScheduledValues(now)

	if duration <= 0 {
		p.SetValueAtTime(target, now)
		return
	}

	p.SetValueAtTime(current, now)
	p.LinearRampToValueAtTime(target, now+duration)
}

// ValueAt returns the automated value at time t.
func (p *Param) ValueAt(t float64) float64 {
	prevTime, prevValue := p.anchorTime, p.anchorValue

	for _, e := range p.events {
		if e.time > t {
			if e.kind == eventRamp && e.time > prevTime {
				frac := (t - prevTime) / (e.time - prevTime)
				return p.clamp(prevValue + (e.value-prevValue)*frac)
			}

			break
		}

		prevTime, prevValue = e.time, e.value
	}

	return p.clamp(prevValue)
}

// Fill writes one value per frame starting at context time t0 and reports
// whether the whole range is constant.
func (p *Param) Fill(dst []float64, t0, sampleRate float64) bool {
	if p.constantOver(t0, t0+float64(len(dst))/sampleRate) {
		v := p.ValueAt(t0)
		for i := range dst {
			dst[i] = v
		}

		return true
	}

	for i := range dst {
		dst[i] = p.ValueAt(t0 + float64(i)/sampleRate)
	}

	return false
}

// Pending returns the number of events not yet consumed.
func (p *Param) Pending() int { return len(p.events) }

// consume folds every event at or before t into the anchor.
func (p *Param) consume(t float64) {
	n := 0
	for n < len(p.events) && p.events[n].time <= t {
		p.anchorTime = p.events[n].time
		p.anchorValue = p.events[n].value
		n++
	}

	if n > 0 {
		p.events = append(p.events[:0], p.events[n:]...)
	}
}

func (p *Param) constantOver(t0, t1 float64) bool {
	for _, e := range p.events {
		if e.time <= t0 {
			continue
		}

		if e.time < t1 {
			return false
		}

		return e.kind != eventRamp
	}

	return true
}

func (p *Param) insert(e paramEvent) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > e.time })
	p.events = append(p.events, paramEvent{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

func (p *Param) clamp(v float64) float64 {
	if math.IsNaN(v) {
		return p.min
	}

	return math.Max(p.min, math.Min(p.max, v))
}
