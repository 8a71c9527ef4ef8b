package render

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/reviewradar/reviewradar/api/types"
)

// Renderer consumes one status descriptor per pass and updates an externally
// visible indicator. It has no return value; a rendering surface that fails
// must cope on its own.
type Renderer interface {
	Render(ctx context.Context, desc types.StatusDescriptor)
}

// LogRenderer writes the descriptor to the daemon log. It is always wired in
// so every pass leaves a trace even when no other surface is attached.
type LogRenderer struct{}

func (LogRenderer) Render(_ context.Context, desc types.StatusDescriptor) {
	logrus.WithFields(logrus.Fields{
		"text":  desc.Text,
		"color": desc.Color,
		"icon":  desc.Icon,
	}).Info(desc.Title)
}

// Multi fans one descriptor out to several renderers in order.
type Multi []Renderer

func (m Multi) Render(ctx context.Context, desc types.StatusDescriptor) {
	for _, r := range m {
		r.Render(ctx, desc)
	}
}
