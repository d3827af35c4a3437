// Package intent classifies free-form builder prompts into editor actions.
// Classification is total: every prompt lands on exactly one intent, with
// CreateComponent as the final fallback.
package intent

import (
	"regexp"
	"sort"
	"strings"

	"pagecraft-backend/domain/core/valueobjects"
)

// Kind is the action a prompt asks the editor to perform
type Kind string

const (
	KindDebug             Kind = "DEBUG"
	KindCreateApplication Kind = "CREATE_APPLICATION"
	KindModify            Kind = "MODIFY"
	KindCreatePage        Kind = "CREATE_PAGE"
	KindCode              Kind = "CODE"
	KindCreateComponent   Kind = "CREATE_COMPONENT"
)

// Intent is a classification outcome. TargetNodeID is set only for Modify.
type Intent struct {
	Kind         Kind
	TargetNodeID valueobjects.NodeID
}

// Context carries what the editor knows at classification time: the node
// the user has selected, if any, and the kinds already present in the tree
// with a representative node ID for each.
type Context struct {
	SelectedNodeID valueobjects.NodeID
	ExistingKinds  map[string]valueobjects.NodeID
}

var (
	tracebackPattern = regexp.MustCompile(`(?i)\btraceback\b|file "[^"]+", line \d+`)
	errorNamePattern = regexp.MustCompile(`\b\w*(Error|Exception)\b|\bpanic:`)
	fixErrorPattern  = regexp.MustCompile(`(?i)\b(fix|debug)\b.*\b(error|bug|crash|exception)\b|\b(error|bug|crash|exception)\b.*\b(fix|debug)\b`)

	modifyVerbPattern = regexp.MustCompile(`(?i)\b(align|fix|update|modify|change|remove|adjust|resize|recolor|move)\b|\badd\b.+\b(into|to the|in the)\b`)
	createNewPattern  = regexp.MustCompile(`(?i)\bcreate\s+a\s+new\b|\bbuild\s+a\s+new\b|\bmake\s+a\s+new\b`)

	pageCuePattern = regexp.MustCompile(`(?i)\b(landing|dashboard|website|web\s*site|pages?)\b`)
	codeCuePattern = regexp.MustCompile(`(?i)\b(utility\s+function|helper\s+function|hook|algorithm|regex|snippet)\b`)

	cssFrameworks = []string{"tailwind", "bootstrap", "bulma", "material"}

	// kindRoleWords maps catalog kinds to the words users reach for when
	// talking about them, so "align the registration fields" addresses an
	// existing form even though the word "form" never appears.
	kindRoleWords = map[string][]string{
		"form":   {"form", "field", "fields", "registration"},
		"input":  {"input", "textbox", "field"},
		"button": {"button", "cta"},
		"navbar": {"navbar", "nav", "menu", "header"},
		"card":   {"card", "tile"},
		"table":  {"table", "grid", "rows"},
		"chart":  {"chart", "graph", "plot"},
		"image":  {"image", "picture", "photo", "logo"},
		"text":   {"text", "heading", "title", "label", "paragraph"},
		"login":  {"login", "sign in", "signin"},
		"signup": {"signup", "sign up", "register"},
	}
	appPairs = [][2]string{
		{"signup", "login"},
		{"sign up", "login"},
		{"signup", "landing"},
		{"register", "login"},
	}
)

// Classify maps a prompt to an intent using ordered rules. Earlier rules
// encode precedence between overlapping keyword sets, so the order is part
// of the contract.
func Classify(prompt string, ctx Context) Intent {
	text := strings.ToLower(strings.TrimSpace(prompt))

	if isDebugPrompt(prompt, text) {
		return Intent{Kind: KindDebug}
	}
	if isApplicationPrompt(text) {
		return Intent{Kind: KindCreateApplication}
	}
	if target, ok := resolveModifyTarget(text, ctx); ok {
		return Intent{Kind: KindModify, TargetNodeID: target}
	}
	if pageCuePattern.MatchString(text) && !strings.Contains(text, "component") {
		return Intent{Kind: KindCreatePage}
	}
	if codeCuePattern.MatchString(text) &&
		!strings.Contains(text, "component") &&
		!strings.Contains(text, "page") &&
		!strings.Contains(text, "application") {
		return Intent{Kind: KindCode}
	}

	return Intent{Kind: KindCreateComponent}
}

// isDebugPrompt checks rule 1: explicit error signatures or fix/debug
// phrasing paired with an error word. Error-type names are matched against
// the original casing since "TypeError" is a signature but "type error"
// prose is not.
func isDebugPrompt(original, lowered string) bool {
	if tracebackPattern.MatchString(original) {
		return true
	}
	if errorNamePattern.MatchString(original) {
		return true
	}
	return fixErrorPattern.MatchString(lowered)
}

// isApplicationPrompt checks rule 2: multi-page cues or an explicit
// "application" keyword combined with a CSS framework mention
func isApplicationPrompt(text string) bool {
	for _, pair := range appPairs {
		if strings.Contains(text, pair[0]) && strings.Contains(text, pair[1]) {
			return true
		}
	}
	if strings.Contains(text, "application") || strings.Contains(text, "an app") {
		for _, fw := range cssFrameworks {
			if strings.Contains(text, fw) {
				return true
			}
		}
	}
	return false
}

// resolveModifyTarget checks rule 3: the prompt addresses a node that
// already exists. An explicit "create a new ..." phrase always overrides
// the modification read; a modification verb with an addressable target
// always wins over a bare "create".
func resolveModifyTarget(text string, ctx Context) (valueobjects.NodeID, bool) {
	if createNewPattern.MatchString(text) {
		return valueobjects.NodeID{}, false
	}

	hasModifyVerb := modifyVerbPattern.MatchString(text)
	if !hasModifyVerb {
		return valueobjects.NodeID{}, false
	}

	// An explicit selection is the strongest address the editor has
	if !ctx.SelectedNodeID.IsZero() {
		return ctx.SelectedNodeID, true
	}

	// A named kind or role word that exists in the tree makes the prompt
	// addressable. Kinds are scanned in sorted order so a role word shared
	// by two kinds always resolves to the same node.
	kinds := make([]string, 0, len(ctx.ExistingKinds))
	for kind := range ctx.ExistingKinds {
		if kind != "" {
			kinds = append(kinds, kind)
		}
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		lowered := strings.ToLower(kind)
		if strings.Contains(text, lowered) {
			return ctx.ExistingKinds[kind], true
		}
		for _, role := range kindRoleWords[lowered] {
			if strings.Contains(text, role) {
				return ctx.ExistingKinds[kind], true
			}
		}
	}

	return valueobjects.NodeID{}, false
}
