package logging

// ProgressSampler thins out per-asset progress logging for large plans. It
// lets a line through whenever the scene changes or overall completion
// crosses into a new bucket.
type ProgressSampler struct {
	bucketSize float64
	lastScene  int
	lastBucket int
}

// NewProgressSampler builds a sampler with the given bucket width in percent
// (10 when bucketSize is not positive).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastScene: -1, lastBucket: -1}
}

// ShouldLog reports whether progress at (scene, done of total) is worth a line.
// A nil sampler logs everything.
func (s *ProgressSampler) ShouldLog(scene, done, total int) bool {
	if s == nil {
		return true
	}
	emit := false
	if scene != s.lastScene {
		s.lastScene = scene
		emit = true
	}
	if total > 0 {
		bucket := int(float64(done) * 100 / float64(total) / s.bucketSize)
		if bucket != s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}
