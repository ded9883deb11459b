package edge

// Edge is a single typed relationship produced by extraction: an actor acting
// on a GitHub resource, or an actor referenced from free text via @-mention.
// Edges are immutable once constructed; they are created, persisted and
// discarded, never mutated.
type Edge struct {
	// Type is the relationship kind, e.g. issue_created, pr_review_approved.
	Type string
	// Title of the related GitHub object, when the category carries one.
	Title string
	// CreatedAt is the action timestamp as returned by the API (ISO-8601).
	CreatedAt string
	// Login of the user the edge originates from.
	Login string
	// URL of the concrete acted-upon object (comment URL, issue URL, PR URL).
	URL string
	// ParentURL is the containing object's URL for comment-like edges
	// (a comment's parent is its issue/discussion). Empty for created edges.
	ParentURL string
	// FromBot marks the source login as a bot account. Metadata only; bot
	// edges are never dropped at this layer.
	FromBot bool
}

// Source returns the actor identifier: the login that performed the action.
func (e Edge) Source() string {
	return e.Login
}

// Target returns the resource identifier. Comment-like edges target their
// parent container; created edges target the created object itself.
func (e Edge) Target() string {
	if e.ParentURL != "" {
		return e.ParentURL
	}
	return e.URL
}

// Row is the persisted form of an Edge, matching the fixed CSV column set.
type Row struct {
	Source    string `json:"source" db:"source"`
	Target    string `json:"target" db:"target"`
	Type      string `json:"type" db:"type"`
	Title     string `json:"title" db:"title"`
	CreatedAt string `json:"created_at" db:"created_at"`
	URL       string `json:"url" db:"url"`
}

// Columns is the CSV header order shared by the CSV sink and loader.
var Columns = []string{"source", "target", "type", "title", "created_at", "url"}

// Row converts the edge to its persisted representation. Reloading the row
// reconstructs an equivalent relationship for graph-building purposes.
func (e Edge) Row() Row {
	return Row{
		Source:    e.Source(),
		Target:    e.Target(),
		Type:      e.Type,
		Title:     e.Title,
		CreatedAt: e.CreatedAt,
		URL:       e.URL,
	}
}

// Record is the loaded form consumed by the graph builder: a flat map with at
// least source and target, plus arbitrary scalar attributes.
type Record map[string]string

// Record converts the row to the generic record form.
func (r Row) Record() Record {
	return Record{
		"source":     r.Source,
		"target":     r.Target,
		"type":       r.Type,
		"title":      r.Title,
		"created_at": r.CreatedAt,
		"url":        r.URL,
	}
}
