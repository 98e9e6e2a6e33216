package domain

// Artifact file names produced by a run.
const (
	ArtifactMap       = "incident_map.png"
	ArtifactWordCloud = "incident_wordcloud.png"
	ArtifactReport    = "incident_report.html"
)

// Artifact is one rendered output.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}
