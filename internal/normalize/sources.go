package normalize

import "strings"

// Shape detection is kept per source so a new upstream field in one toolkit
// cannot change extraction for another.

// NotionPageIDs lists page ids from the first limit entries of a page
// search response. Entries without an id still count toward limit.
// A limit of zero or less reads every entry.
func NotionPageIDs(v any, limit int) []string {
	results := ListUnder(v, "results")
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	var ids []string
	for _, r := range results {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		if id := FirstString(m, "id"); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Repo is the subset of a repository listing entry used for ingestion.
type Repo struct {
	Owner       string
	Name        string
	Title       string
	Description string
}

// FullName returns "owner/name".
func (r Repo) FullName() string {
	return r.Owner + "/" + r.Name
}

// Repos extracts repositories from a listing response. Entries without an
// owner or name are skipped.
func Repos(v any) []Repo {
	var repos []Repo
	for _, raw := range ListUnder(v, "repos", "data", "items", "repositories") {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		owner := ""
		if o, ok := m["owner"].(map[string]any); ok {
			owner = FirstString(o, "login")
		} else {
			owner = FirstString(m, "owner_login", "owner")
		}
		name := FirstString(m, "name", "repo", "repository")
		if owner == "" || name == "" {
			continue
		}
		r := Repo{Owner: owner, Name: name, Description: FirstString(m, "description")}
		r.Title = FirstString(m, "full_name")
		if r.Title == "" {
			r.Title = r.FullName()
		}
		repos = append(repos, r)
	}
	return repos
}

// Channel is a chat channel reference.
type Channel struct {
	ID   string
	Name string
}

// Channels extracts channels from a channel listing response. Names are
// lower-cased.
func Channels(v any) []Channel {
	var out []Channel
	for _, raw := range ListUnder(v, "channels", "data", "items") {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		ch := Channel{
			ID:   FirstString(m, "id", "channel_id"),
			Name: strings.ToLower(FirstString(m, "name", "channel")),
		}
		if ch.ID == "" || ch.Name == "" {
			continue
		}
		out = append(out, ch)
	}
	return out
}

// Message is one chat message.
type Message struct {
	Text      string
	Author    string
	Timestamp string
}

// Messages extracts non-empty messages from a history response.
func Messages(v any) []Message {
	var out []Message
	for _, raw := range ListUnder(v, "messages", "data", "items") {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		text := FirstString(m, "text", "content", "message")
		if text == "" {
			continue
		}
		author := FirstString(m, "user", "username", "user_id")
		if author == "" {
			author = "unknown"
		}
		out = append(out, Message{Text: text, Author: author, Timestamp: FirstString(m, "ts", "timestamp")})
	}
	return out
}
