package gemini

import (
	"bytes"
	"fmt"
	"text/template"
)

const promptText = `You help user researchers label the results of an open card sort.
Participants grouped the cards below and a hierarchical clustering of their
groupings produced {{len .Clusters}} clusters. Propose a short category name
of at most four words for each cluster, in the language of the card labels.

{{range $i, $c := .Clusters}}Cluster {{$i}}:
{{range $c}}- {{.}}
{{end}}
{{end}}Answer with JSON only, in the form {"names": ["name for cluster 0", "name for cluster 1"]},
with exactly {{len .Clusters}} names in cluster order.`

var promptTemplate = template.Must(template.New("categories").Parse(promptText))

type promptData struct {
	Clusters [][]string
}

// namesResponse is the JSON document the model is asked to return.
type namesResponse struct {
	Names []string `json:"names"`
}

func buildPrompt(clusters [][]string) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, promptData{Clusters: clusters}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
