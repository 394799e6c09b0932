package transfer

import "time"

// Exported constants.
const (
	// RateWindowSize is the number of recent samples kept by the estimator.
	// The window size is a deliberate small fixed choice; anything in the
	// 3-8 range behaves about the same for item-boundary sampling.
	RateWindowSize = 5
	// RateSmoothing is the exponential blend factor applied to each new
	// instantaneous rate. Higher values react faster but jitter more on
	// small, bursty item completions.
	RateSmoothing = 0.3
)

// RateSample is a point-in-time measurement: how many bytes had been
// transferred in the current run at a given elapsed offset.
type RateSample struct {
	Elapsed time.Duration
	Bytes   int64
}

// RateEstimator smooths instantaneous byte/sec measurements into a stable
// rate and derives an ETA from remaining bytes. It keeps a short rolling
// window of cumulative samples; the instantaneous rate between the two newest
// samples is exponentially blended with the previous smoothed rate.
//
// The estimator starts each run undefined and returns to undefined on Reset;
// a rate from a previous run is never carried over.
type RateEstimator struct {
	samples  []RateSample
	smoothed float64
	defined  bool
}

// NewRateEstimator creates an estimator with no samples.
func NewRateEstimator() *RateEstimator {
	return &RateEstimator{
		samples: make([]RateSample, 0, RateWindowSize),
	}
}

// AddSample records the cumulative bytes transferred at the given elapsed
// offset. Samples with no elapsed delta against the previous one (0-byte
// items settle instantaneously) refresh the byte count without producing an
// instantaneous rate, so they can never divide by zero.
func (r *RateEstimator) AddSample(elapsed time.Duration, bytes int64) {
	r.samples = append(r.samples, RateSample{Elapsed: elapsed, Bytes: bytes})
	if len(r.samples) > RateWindowSize {
		r.samples = r.samples[1:]
	}

	if len(r.samples) < 2 {
		return
	}

	newest := r.samples[len(r.samples)-1]
	previous := r.samples[len(r.samples)-2]

	deltaTime := newest.Elapsed - previous.Elapsed
	if deltaTime <= 0 {
		return
	}

	instant := float64(newest.Bytes-previous.Bytes) / deltaTime.Seconds()
	if instant < 0 {
		instant = 0
	}

	if !r.defined {
		r.smoothed = instant
		r.defined = true

		return
	}

	r.smoothed = RateSmoothing*instant + (1-RateSmoothing)*r.smoothed
}

// Rate returns the smoothed rate in bytes/sec. The second return is false
// while the estimator has not seen enough samples to define one.
func (r *RateEstimator) Rate() (float64, bool) {
	if !r.defined {
		return 0, false
	}

	return r.smoothed, true
}

// ETA derives the estimated time remaining for the given outstanding bytes.
// Undefined (false) when the rate is undefined or zero - never reported as a
// zero duration, which would read as "done".
func (r *RateEstimator) ETA(remainingBytes int64) (time.Duration, bool) {
	rate, ok := r.Rate()
	if !ok || rate <= 0 {
		return 0, false
	}

	if remainingBytes < 0 {
		remainingBytes = 0
	}

	return time.Duration(float64(remainingBytes) / rate * float64(time.Second)), true
}

// Reset discards all samples and returns the estimator to the undefined
// state. Called at the start of each run and each retry.
func (r *RateEstimator) Reset() {
	r.samples = r.samples[:0]
	r.smoothed = 0
	r.defined = false
}
