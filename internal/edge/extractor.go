package edge

import (
	stderrors "errors"
	"strings"

	"github.com/icebreakerlabs/ghgraph/internal/errors"
)

// EmitFunc receives extracted edges one at a time, in category order.
type EmitFunc func(Edge)

// Extractor turns one fetched activity payload into a stream of edges.
// It performs no I/O and never mutates the payload.
type Extractor struct {
	bots *BotClassifier
}

// NewExtractor creates an extractor. The allowlist names bot accounts that
// carry no recognizable suffix; classification is attached to edges as
// metadata, never used to drop them.
func NewExtractor(botAllowlist []string) *Extractor {
	return &Extractor{bots: NewBotClassifier(botAllowlist)}
}

// categoryFunc extracts edges from one category slice of the payload.
type categoryFunc func(x *Extractor, username string, slice any, emit EmitFunc) error

// categories is the fixed dispatch table. Categories are independent of each
// other; output order is category order then list order, never time order.
var categories = []struct {
	name string
	fn   categoryFunc
}{
	{"issuesCreated", createdHandler("issue_created", "issue_mentioned")},
	{"prsCreated", createdHandler("pr_created", "pr_mentioned")},
	{"prReviewsAndCommits", extractReviews},
	{"issueComments", commentHandler("issue_comment", "issue_comment_mentioned")},
	{"discussionsCreated", createdHandler("discussion_created", "discussion_mentioned")},
	{"discussionComments", commentHandler("discussion_comment", "discussion_comment_mentioned")},
}

// Each walks every category of the payload, emitting edges as it goes. A
// malformed category fails on its own: edges from the other categories are
// still emitted, and the returned error names what broke.
func (x *Extractor) Each(payload map[string]any, username string, emit EmitFunc) error {
	if payload == nil {
		return nil
	}
	var failed []string
	var causes []error
	for _, cat := range categories {
		slice, ok := payload[cat.name]
		if !ok || slice == nil {
			continue
		}
		if err := cat.fn(x, username, slice, emit); err != nil {
			failed = append(failed, cat.name)
			causes = append(causes, err)
		}
	}
	if len(failed) > 0 {
		return errors.Wrap(stderrors.Join(causes...), errors.KindExtraction,
			"malformed categories: "+strings.Join(failed, ", "))
	}
	return nil
}

// Extract collects all edges into a slice. See Each for error semantics.
func (x *Extractor) Extract(payload map[string]any, username string) ([]Edge, error) {
	var edges []Edge
	err := x.Each(payload, username, func(e Edge) {
		edges = append(edges, e)
	})
	return edges, err
}

// createdHandler builds the handler for the "X created" categories: one edge
// per created object targeting the object itself, plus mention edges from its
// body text.
func createdHandler(kind, mentionKind string) categoryFunc {
	return func(x *Extractor, username string, slice any, emit EmitFunc) error {
		nodes, err := nodeList(slice)
		if err != nil {
			return err
		}
		for _, node := range nodes {
			e := Edge{
				Type:      kind,
				Title:     getString(node, "title"),
				CreatedAt: getString(node, "createdAt"),
				Login:     username,
				URL:       getString(node, "url"),
				FromBot:   x.bots.IsBot(username),
			}
			emit(e)
			x.emitMentions(mentionKind, getString(node, "bodyText"), e, emit)
		}
		return nil
	}
}

// commentHandler builds the handler for the comment categories, which nest one
// level: container -> comments[]. Comment edges target the container URL and
// carry the comment's own author, who need not be the queried user.
func commentHandler(kind, mentionKind string) categoryFunc {
	return func(x *Extractor, username string, slice any, emit EmitFunc) error {
		containers, err := nodeList(slice)
		if err != nil {
			return err
		}
		for _, container := range containers {
			parentURL := getString(container, "url")
			comments, err := nodeList(container["comments"])
			if err != nil {
				return err
			}
			for _, comment := range comments {
				e := Edge{
					Type:      kind,
					CreatedAt: getString(comment, "createdAt"),
					Login:     authorLogin(comment),
					URL:       getString(comment, "url"),
					ParentURL: parentURL,
					FromBot:   x.bots.IsBot(authorLogin(comment)),
				}
				emit(e)
				x.emitMentions(mentionKind, getString(comment, "bodyText"), e, emit)
			}
		}
		return nil
	}
}

// extractReviews handles prReviewsAndCommits: PR -> reviews[]. The edge type
// is derived from the review state, lower-cased. The state set is whatever the
// API returns (APPROVED, COMMENTED, DISMISSED, ...), treated as open-ended.
func extractReviews(x *Extractor, username string, slice any, emit EmitFunc) error {
	prs, err := nodeList(slice)
	if err != nil {
		return err
	}
	for _, pr := range prs {
		prURL := getString(pr, "url")
		reviews, err := nodeList(pr["reviews"])
		if err != nil {
			return err
		}
		for _, review := range reviews {
			e := Edge{
				Type:      reviewType(getString(review, "state")),
				CreatedAt: getString(review, "createdAt"),
				Login:     username,
				URL:       getString(review, "url"),
				ParentURL: prURL,
				FromBot:   x.bots.IsBot(username),
			}
			emit(e)
			x.emitMentions("pr_comment_mentioned", getString(review, "bodyText"), e, emit)
		}
	}
	return nil
}

// emitMentions emits one secondary edge per @-mention found in text. Mention
// edges share the originating edge's target and timestamp; their source is the
// mentioned login.
func (x *Extractor) emitMentions(kind, text string, origin Edge, emit EmitFunc) {
	for _, login := range Mentions(text) {
		emit(Edge{
			Type:      kind,
			CreatedAt: origin.CreatedAt,
			Login:     login,
			URL:       origin.URL,
			ParentURL: origin.ParentURL,
			FromBot:   x.bots.IsBot(login),
		})
	}
}

func reviewType(state string) string {
	if state == "" {
		return "pr_review"
	}
	return "pr_review_" + strings.ToLower(state)
}

// nodeList normalizes the two nesting shapes the API uses for equivalent
// data: {"edges": [{"node": {...}}, ...]} and {"nodes": [{...}, ...]}. A nil
// or absent slice yields no nodes; a structurally wrong one is a type error.
func nodeList(slice any) ([]map[string]any, error) {
	if slice == nil {
		return nil, nil
	}
	wrapper, ok := slice.(map[string]any)
	if !ok {
		return nil, errors.Newf(errors.KindExtraction, "expected object, got %T", slice)
	}

	if raw, ok := wrapper["edges"]; ok && raw != nil {
		items, ok := raw.([]any)
		if !ok {
			return nil, errors.Newf(errors.KindExtraction, "edges is %T, not a list", raw)
		}
		nodes := make([]map[string]any, 0, len(items))
		for _, item := range items {
			wrapped, ok := item.(map[string]any)
			if !ok {
				return nil, errors.Newf(errors.KindExtraction, "edge entry is %T, not an object", item)
			}
			node, ok := wrapped["node"].(map[string]any)
			if !ok {
				// Empty nodes occur when search matches a type the inline
				// fragment does not cover.
				continue
			}
			nodes = append(nodes, node)
		}
		return nodes, nil
	}

	if raw, ok := wrapper["nodes"]; ok && raw != nil {
		items, ok := raw.([]any)
		if !ok {
			return nil, errors.Newf(errors.KindExtraction, "nodes is %T, not a list", raw)
		}
		nodes := make([]map[string]any, 0, len(items))
		for _, item := range items {
			node, ok := item.(map[string]any)
			if !ok {
				return nil, errors.Newf(errors.KindExtraction, "node entry is %T, not an object", item)
			}
			nodes = append(nodes, node)
		}
		return nodes, nil
	}

	return nil, nil
}

// getString reads an optional string field, defaulting to empty.
func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// authorLogin reads the nested author.login field of a comment node.
func authorLogin(m map[string]any) string {
	author, ok := m["author"].(map[string]any)
	if !ok {
		return ""
	}
	return getString(author, "login")
}
