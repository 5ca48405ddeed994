package cmd

import (
	"github.com/pseudomuto/swellow/pkg/config"
	"go.uber.org/fx"
)

var Module = fx.Module("cli",
	fx.Provide(
		func(cfg *config.Config) *Session { return NewSession(cfg) },
		fx.Annotate(down, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(peck, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(snapshot, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(up, fx.ResultTags(`group:"commands"`)),
	),
	fx.Invoke(Run),
)
