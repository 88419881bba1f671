// Package grading implements the semester-score arithmetic shared by the
// score services. Everything here is pure: no I/O, no clock, no state.
package grading

import "math"

// WeightSumTolerance absorbs floating noise when weights arrive as floats;
// a sum of 100±0.001 is accepted as exactly 100.
const WeightSumTolerance = 0.001

// Weights are a course's five grading percentages, each in [0,100].
//
// Attendance and participation weights act as point caps, not percentage
// multipliers: a student starts at the full attendance weight and loses one
// point per absence, and earns one participation point per counted
// contribution up to the weight. Midterm, final and report are true
// percentage-weighted scores. The asymmetry is intentional.
type Weights struct {
	Attendance    float64
	Participation float64
	Midterm       float64
	Final         float64
	Report        float64
}

// Sum returns the total of the five weights.
func (w Weights) Sum() float64 {
	return w.Attendance + w.Participation + w.Midterm + w.Final + w.Report
}

// Valid reports whether the weights sum to 100 within WeightSumTolerance.
func (w Weights) Valid() bool {
	return math.Abs(w.Sum()-100) <= WeightSumTolerance
}

// RawScore carries one student's un-weighted inputs. A nil exam score means
// the score has not been entered and contributes zero.
type RawScore struct {
	AbsenceCount       int
	ParticipationCount int
	Midterm            *float64
	Final              *float64
	Report             *float64
}

// AttendanceComponent is the attendance weight minus one point per absence,
// floored at zero.
func AttendanceComponent(w Weights, absences int) float64 {
	return math.Max(0, w.Attendance-float64(absences))
}

// ParticipationComponent is the participation count capped at the
// participation weight.
func ParticipationComponent(w Weights, count int) float64 {
	return math.Min(w.Participation, float64(count))
}

// SemesterScore aggregates a student's raw sub-scores under the given weights
// into a single integer semester score.
//
// The total is rounded to two decimal places first and then rounded
// half-away-from-zero to an integer. Inputs are clamped, never rejected;
// weight validation belongs to the caller.
func SemesterScore(raw RawScore, w Weights) int {
	total := AttendanceComponent(w, raw.AbsenceCount) +
		ParticipationComponent(w, raw.ParticipationCount) +
		deref(raw.Midterm)*w.Midterm/100 +
		deref(raw.Final)*w.Final/100 +
		deref(raw.Report)*w.Report/100

	total = math.Round(total*100) / 100

	return int(math.Round(total))
}

func deref(score *float64) float64 {
	if score == nil {
		return 0
	}
	return *score
}
