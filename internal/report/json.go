package report

import (
	"encoding/json"
	"io"

	"entres/internal/pipeline"
	"entres/internal/resolve"
)

// Document is the JSON form of a run.
type Document struct {
	RunID    string            `json:"run_id"`
	Mode     string            `json:"mode"`
	Source   string            `json:"source,omitempty"`
	Rows     int               `json:"rows"`
	Stats    StatsDocument     `json:"stats"`
	Clusters []ClusterDocument `json:"clusters"`
}

type StatsDocument struct {
	Clusters    int   `json:"clusters"`
	Comparisons int   `json:"comparisons"`
	Merges      int   `json:"merges"`
	Partitions  int   `json:"partitions,omitempty"`
	ElapsedMS   int64 `json:"elapsed_ms"`
}

type ClusterDocument struct {
	ClusterID uint64               `json:"cluster_id"`
	Size      int                  `json:"size"`
	Records   []resolve.RecordView `json:"records"`
}

// NewDocument converts a run result into its JSON document.
func NewDocument(result *pipeline.Result) Document {
	doc := Document{
		RunID:  result.RunID,
		Mode:   result.Mode,
		Source: result.Source,
		Rows:   result.Rows,
		Stats: StatsDocument{
			Clusters:    result.Stats.Clusters,
			Comparisons: result.Stats.Comparisons,
			Merges:      result.Stats.Merges,
			Partitions:  result.Stats.Partitions,
			ElapsedMS:   result.Stats.Elapsed.Milliseconds(),
		},
		Clusters: make([]ClusterDocument, 0, len(result.Groups)),
	}
	for _, g := range result.Groups {
		doc.Clusters = append(doc.Clusters, ClusterDocument{
			ClusterID: g.ClusterID,
			Size:      len(g.Records),
			Records:   g.Records,
		})
	}
	return doc
}

// WriteJSON encodes the run as indented JSON.
func WriteJSON(w io.Writer, result *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(result))
}
