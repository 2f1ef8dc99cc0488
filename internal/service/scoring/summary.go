package scoring

import "github.com/octobees/leadscout/internal/entity"

const topLeadsLimit = 10

// TopLead is the short form of a lead shown in run summaries.
type TopLead struct {
	Name    string `json:"name"`
	Hotness string `json:"hotness"`
	Score   int    `json:"score"`
	Website string `json:"website"`
}

// Summary aggregates a ranked lead list.
type Summary struct {
	Total           int            `json:"total"`
	ByHotness       map[string]int `json:"byHotness"`
	ByWebsiteStatus map[string]int `json:"byWebsiteStatus"`
	TopLeads        []TopLead      `json:"topLeads"`
}

// Summarize counts leads per tier and website status and lists the first ten.
// leads are expected to be ranked already.
func Summarize(leads []entity.Lead) Summary {
	summary := Summary{
		Total:           len(leads),
		ByHotness:       make(map[string]int, 4),
		ByWebsiteStatus: make(map[string]int, 5),
		TopLeads:        make([]TopLead, 0, min(len(leads), topLeadsLimit)),
	}
	for _, h := range entity.Hotnesses() {
		summary.ByHotness[string(h)] = 0
	}
	for _, s := range entity.WebsiteStatuses() {
		summary.ByWebsiteStatus[string(s)] = 0
	}

	for i, lead := range leads {
		if _, ok := summary.ByHotness[string(lead.Hotness)]; ok {
			summary.ByHotness[string(lead.Hotness)]++
		}
		if _, ok := summary.ByWebsiteStatus[string(lead.Verdict.Status)]; ok {
			summary.ByWebsiteStatus[string(lead.Verdict.Status)]++
		}
		if i < topLeadsLimit {
			website := string(lead.Verdict.Status)
			if website == "" {
				website = "unknown"
			}
			summary.TopLeads = append(summary.TopLeads, TopLead{
				Name:    lead.Name,
				Hotness: string(lead.Hotness),
				Score:   lead.Score,
				Website: website,
			})
		}
	}
	return summary
}
