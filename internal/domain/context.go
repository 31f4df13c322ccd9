package domain

// Context item source tags that do not come from the corpus.
const (
	SourceYouCom     = "you_com"
	SourceYouComLive = "you_com_live"
)

// ContextItem is a corpus or live-search item formatted for a prompt.
type ContextItem struct {
	Source  string `json:"source"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Content string `json:"-"`
}

// Citation is the provenance record returned alongside an answer.
type Citation struct {
	Source  string `json:"source"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Citations projects context items onto their citation records.
func Citations(items []ContextItem) []Citation {
	out := make([]Citation, 0, len(items))
	for _, it := range items {
		out = append(out, Citation{Source: it.Source, Title: it.Title, Snippet: it.Snippet})
	}
	return out
}

// Answer is the result of an ask operation.
type Answer struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	Brief     *Brief     `json:"brief,omitempty"`
	Outcome   Outcome    `json:"-"`
}
