package builder

import (
	"github.com/edelwud/tf2tosca/internal/tosca/model"
	"github.com/edelwud/tf2tosca/internal/tosca/ordered"
)

func newValueMap() *ordered.Map[model.Value] {
	return ordered.NewMap[model.Value]()
}
