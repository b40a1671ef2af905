package metrics

import "encoding/json"

// ConsistencyResults is the decoded result structure of the entity
// consistency metric.
type ConsistencyResults struct {
	Mentions []MentionConsistency `json:"mentions"`
}

// MentionConsistency is one mention with its per-label occurrence counts.
type MentionConsistency struct {
	Mention  string        `json:"mention"`
	Entities []EntityCount `json:"entities"`
}

// EntityCount is the number of times a mention was labeled with Label.
type EntityCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

func decodeConsistency(raw json.RawMessage) (ConsistencyResults, error) {
	var res ConsistencyResults
	err := json.Unmarshal(raw, &res)
	return res, err
}

// pivotMentions reshapes the nested mention structure into a rectangular
// label → count-vector mapping for stacked-bar rendering. The mention list
// keeps the input order and defines the vector positions; absent
// (label, mention) pairs stay zero.
func pivotMentions(res ConsistencyResults) (mentions []string, series map[string][]int) {
	mentions = make([]string, len(res.Mentions))
	index := make(map[string]int, len(res.Mentions))
	for i, m := range res.Mentions {
		mentions[i] = m.Mention
		index[m.Mention] = i
	}

	series = make(map[string][]int)
	for _, m := range res.Mentions {
		for _, e := range m.Entities {
			counts, ok := series[e.Label]
			if !ok {
				counts = make([]int, len(mentions))
				series[e.Label] = counts
			}
			counts[index[m.Mention]] = e.Count
		}
	}
	return mentions, series
}
