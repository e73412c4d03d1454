package session

import "math"

// Summary is the numeric rollup of one measurement batch.
type Summary struct {
	Count  int
	MeanUS float64
	MinUS  int64
	MaxUS  int64
	StdDev float64
}

// Summarize reduces a batch of travel times to its summary statistics.
func Summarize(times []int64) Summary {
	if len(times) == 0 {
		return Summary{}
	}

	sum := Summary{Count: len(times), MinUS: times[0], MaxUS: times[0]}
	var total float64
	for _, t := range times {
		total += float64(t)
		if t < sum.MinUS {
			sum.MinUS = t
		}
		if t > sum.MaxUS {
			sum.MaxUS = t
		}
	}
	sum.MeanUS = total / float64(len(times))

	var sq float64
	for _, t := range times {
		d := float64(t) - sum.MeanUS
		sq += d * d
	}
	sum.StdDev = math.Sqrt(sq / float64(len(times)))
	return sum
}

// SpeedOfSound estimates the speed of sound in m/s from a travel
// distance in centimetres and a mean travel time in microseconds.
// Returns 0 when the time is not positive.
func SpeedOfSound(distanceCM, meanMicros float64) float64 {
	if meanMicros <= 0 {
		return 0
	}
	return (distanceCM / 100) / (meanMicros / 1e6)
}
