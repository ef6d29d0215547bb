package assets

// Status is the lifecycle state of one asset during a resolution run.
type Status string

const (
	StatusPending    Status = "pending"
	StatusGenerating Status = "generating"
	StatusReady      Status = "ready"
	StatusError      Status = "error"
)

// Done reports whether the asset reached a final state.
func (s Status) Done() bool {
	return s == StatusReady || s == StatusError
}

// Metadata tracks one asset through a coordinator run.
type Metadata struct {
	AssetID string `json:"assetId"`
	Status  Status `json:"status"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ProgressFunc receives every status change of an asset.
type ProgressFunc func(assetID string, status Status)

// Outcome is the ordered per-asset result of a coordinator run.
type Outcome struct {
	Items []Metadata `json:"items"`
}

// URLs returns the generated URL of every ready asset. Failed or unattempted
// assets are absent and need manual attention.
func (o Outcome) URLs() map[string]string {
	urls := make(map[string]string, len(o.Items))
	for _, item := range o.Items {
		if item.Status == StatusReady && item.URL != "" {
			urls[item.AssetID] = item.URL
		}
	}
	return urls
}

// Counts returns how many assets are ready, failed, and still pending.
func (o Outcome) Counts() (ready, failed, pending int) {
	for _, item := range o.Items {
		switch item.Status {
		case StatusReady:
			ready++
		case StatusError:
			failed++
		default:
			pending++
		}
	}
	return ready, failed, pending
}

// Failed returns the metadata of assets that ended in error.
func (o Outcome) Failed() []Metadata {
	var out []Metadata
	for _, item := range o.Items {
		if item.Status == StatusError {
			out = append(out, item)
		}
	}
	return out
}
