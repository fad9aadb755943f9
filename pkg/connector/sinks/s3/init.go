package s3

import (
	"github.com/helioslabs/bronzeflow/pkg/config"
	"github.com/helioslabs/bronzeflow/pkg/connector/core"
	"github.com/helioslabs/bronzeflow/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterSink("s3", func(cfg *config.SinkConfig) (core.ObjectSink, error) {
		return NewSink(cfg)
	})
}
