package cuepoint

import (
	"errors"
	"strconv"

	"github.com/aretw0/cuepoint/pkg/domain"
	"github.com/aretw0/cuepoint/pkg/ports"
)

// AttrUnitID names a node that stands for a navigable content unit. Unit
// nodes are indexed in document order.
const AttrUnitID = "data-unit-id"

var errScenesUnsupported = errors.New("navigator does not support scenes")

// ResolveUnit maps a unit target onto an index: a unit node whose
// AttrUnitID or id equals target, or else target read as a number.
func (e *Engine) ResolveUnit(target string) (int, bool) {
	for i, n := range e.doc.WithAttr(AttrUnitID) {
		if n.Attributes[AttrUnitID] == target || n.ID == target {
			return i, true
		}
	}
	i, err := strconv.Atoi(target)
	if err != nil {
		return 0, false
	}
	return i, true
}

func (e *Engine) navigate(req domain.NavigateRequest) {
	if e.navigator == nil {
		e.logger.Debug("navigation request without navigator", "kind", req.Kind, "target", req.Target)
		return
	}

	var err error
	switch {
	case req.Kind == domain.NavigateNext || req.Target == domain.NavigateNext:
		err = e.navigator.Next()
	case req.Kind == domain.NavigatePrev || req.Target == domain.NavigatePrev:
		err = e.navigator.Prev()
	case req.Kind == domain.NavigateScene:
		sn, ok := e.navigator.(ports.SceneNavigator)
		if !ok {
			err = errScenesUnsupported
			break
		}
		err = sn.GoToScene(req.Target)
	default:
		index, ok := e.ResolveUnit(req.Target)
		if !ok {
			e.logger.Warn("navigation target not found", "target", req.Target)
			return
		}
		err = e.navigator.GoTo(index)
	}

	if err != nil {
		e.logger.Error("navigation failed", "kind", req.Kind, "target", req.Target, "error", err)
	}
}
