package indices

import (
	"context"
	"encoding/json"
	"planboard/client/es"
	"strings"
)

var (
	SearchProjectsFunc = SearchProjects

	SearchSize = 50
)

// SearchProjects matches the words of text against project names, descriptions, stage names and activity titles.
// Archived projects rank below the others.
func SearchProjects(ctx context.Context, text string) ([]ProjectDocument, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []ProjectDocument{}, nil
	}

	query := es.H{
		"size": SearchSize,
		"query": es.H{
			"bool": es.H{
				"must": es.H{
					"multi_match": es.H{
						"query":    text,
						"fields":   []string{"name^3", "description", "stages", "activities.title^2"},
						"operator": "AND",
					},
				},
				"should": es.H{"term": es.H{"archived": false}},
			},
		},
	}
	r, err := es.SearchFunc(ctx, ProjectIndexName, query)
	if err != nil {
		return nil, err
	}

	docs := make([]ProjectDocument, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		doc := ProjectDocument{}
		if err := json.Unmarshal([]byte(hit.Source), &doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
