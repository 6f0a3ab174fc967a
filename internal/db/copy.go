package db

import (
	"github.com/jackc/pgx/v5"

	"github.com/gyeh/vitalrisk/internal/model"
)

// ChannelSource implements pgx.CopyFromSource by reading ReportRows from a channel.
type ChannelSource struct {
	ch      <-chan *model.ReportRow
	current *model.ReportRow
}

// NewChannelSource creates a CopyFromSource backed by a channel.
func NewChannelSource(ch <-chan *model.ReportRow) *ChannelSource {
	return &ChannelSource{ch: ch}
}

// Next advances to the next row. Returns false when the channel is closed.
func (s *ChannelSource) Next() bool {
	row, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = row
	return true
}

// Values returns the current row's values in COPY column order.
func (s *ChannelSource) Values() ([]any, error) {
	return s.current.CopyValues(), nil
}

// Err always returns nil; producer failures are reported on their own channel.
func (s *ChannelSource) Err() error {
	return nil
}

var _ pgx.CopyFromSource = (*ChannelSource)(nil)
