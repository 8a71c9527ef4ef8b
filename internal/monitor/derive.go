package monitor

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/reviewradar/reviewradar/api/types"
)

// Template describes how a category (or the error case) renders into a
// descriptor. TitleFormat takes the item count, or the error message for the
// error template.
type Template struct {
	Icon        string
	Color       string
	TitleFormat string
}

// DeriveConfig holds the fixed priority order of categories, their templates,
// the error template, and the catch-all fallback descriptor.
type DeriveConfig struct {
	Priority      []types.Category
	Templates     map[types.Category]Template
	ErrorTemplate Template
	Fallback      types.StatusDescriptor
}

// DefaultDeriveConfig is the stock configuration: attention first, then
// incoming, then outgoing. Work-in-progress changes never drive the summary.
func DefaultDeriveConfig() DeriveConfig {
	return DeriveConfig{
		Priority: []types.Category{
			types.CategoryNeedsAttention,
			types.CategoryIncoming,
			types.CategoryOutgoing,
		},
		Templates: map[types.Category]Template{
			types.CategoryNeedsAttention: {Icon: "attention", Color: "#d93025", TitleFormat: "%d reviews need your attention"},
			types.CategoryIncoming:       {Icon: "incoming", Color: "#1a73e8", TitleFormat: "%d incoming reviews"},
			types.CategoryOutgoing:       {Icon: "outgoing", Color: "#188038", TitleFormat: "%d outgoing reviews waiting on others"},
		},
		ErrorTemplate: Template{Icon: "error", Color: "#b00020", TitleFormat: "reviewradar: %s"},
		Fallback:      types.StatusDescriptor{Text: "", Color: "#5f6368", Title: "No reviews waiting", Icon: "idle"},
	}
}

// Derive turns a combined outcome into exactly one status descriptor.
//
// Any error takes precedence over results. Errors are sorted by host name
// before the first one is picked, so the derived descriptor is deterministic
// regardless of settlement order. Other errors stay available on the raw
// outcome for detail surfaces.
func Derive(outcome types.CombinedOutcome, cfg DeriveConfig) types.StatusDescriptor {
	if len(outcome.Errors) > 0 {
		errs := slices.Clone(outcome.Errors)
		slices.SortStableFunc(errs, func(a, b types.HostError) int {
			return strings.Compare(a.Host, b.Host)
		})
		first := errs[0]
		return types.StatusDescriptor{
			Text:  "!",
			Color: cfg.ErrorTemplate.Color,
			Icon:  cfg.ErrorTemplate.Icon,
			Title: fmt.Sprintf(cfg.ErrorTemplate.TitleFormat, first.Err.Error()),
		}
	}

	cats := Categorize(outcome.Results)
	for _, label := range cfg.Priority {
		items := cats[label]
		if len(items) == 0 {
			continue
		}
		tpl, ok := cfg.Templates[label]
		if !ok {
			continue
		}
		return types.StatusDescriptor{
			Text:  strconv.Itoa(len(items)),
			Color: tpl.Color,
			Icon:  tpl.Icon,
			Title: fmt.Sprintf(tpl.TitleFormat, len(items)),
		}
	}

	return cfg.Fallback
}
