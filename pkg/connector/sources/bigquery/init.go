package bigquery

import (
	"github.com/helioslabs/bronzeflow/pkg/config"
	"github.com/helioslabs/bronzeflow/pkg/connector/core"
	"github.com/helioslabs/bronzeflow/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterSource("bigquery", func(cfg *config.SourceConfig) (core.EventSource, error) {
		return NewSource(cfg)
	})
}
