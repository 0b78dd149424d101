package toolmanager

import (
	"context"

	"github.com/Cyclone1070/codeagent/internal/tool"
)

// toolImpl is the surface every registered tool provides.
type toolImpl interface {
	Name() string
	Declaration() tool.Declaration
	Input() any
	Execute(ctx context.Context, input any) (tool.Result, error)
}
