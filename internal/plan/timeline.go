package plan

import "fmt"

// CheckTimeline reports violations of the scene timing invariants: every
// scene has a positive duration, scene start times never decrease, and each
// scene interval fits inside [0, plan duration]. An empty result means the
// timeline is consistent.
func (p VideoPlan) CheckTimeline() []string {
	var issues []string
	if p.Duration <= 0 {
		issues = append(issues, fmt.Sprintf("plan duration must be positive, got %g", p.Duration))
	}
	prevStart := 0.0
	for i, scene := range p.Scenes {
		label := sceneLabel(i, scene)
		if scene.Duration <= 0 {
			issues = append(issues, fmt.Sprintf("%s: duration must be positive, got %g", label, scene.Duration))
		}
		if scene.StartTime < 0 {
			issues = append(issues, fmt.Sprintf("%s: start time %g is negative", label, scene.StartTime))
		}
		if i > 0 && scene.StartTime < prevStart {
			issues = append(issues, fmt.Sprintf("%s: start time %g precedes previous scene start %g", label, scene.StartTime, prevStart))
		}
		if p.Duration > 0 && scene.End() > p.Duration+timeEpsilon {
			issues = append(issues, fmt.Sprintf("%s: ends at %g beyond plan duration %g", label, scene.End(), p.Duration))
		}
		prevStart = scene.StartTime
	}
	return issues
}

// timeEpsilon absorbs float drift from planners that sum scene durations.
const timeEpsilon = 1e-6

func sceneLabel(index int, scene Scene) string {
	if scene.ID != "" {
		return fmt.Sprintf("scene %d (%s)", index+1, scene.ID)
	}
	return fmt.Sprintf("scene %d", index+1)
}
