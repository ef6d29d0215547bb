package assets

import "vidplan/internal/plan"

// Inject returns a copy of elements where every image whose ID is in urls
// points at that URL through both its content and its src. Other elements are
// copied unchanged. Applying Inject twice with the same map gives the same
// result as applying it once.
func Inject(elements []plan.Element, urls map[string]string) []plan.Element {
	out := plan.CloneElements(elements)
	if len(urls) == 0 {
		return out
	}
	for i, el := range out {
		img, ok := el.Image()
		if !ok {
			continue
		}
		url, ok := urls[el.ID]
		if !ok {
			continue
		}
		out[i].Body = img.WithSource(url)
	}
	return out
}
