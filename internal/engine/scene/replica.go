package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/ketsji/internal/engine/object"
)

// ErrNoTemplate is returned by AddReplica for unknown inactive objects.
var ErrNoTemplate = errors.New("no inactive object with that name")

// AddReplica clones the inactive object name together with its children
// and adds the copies to the active objects. When ref is not nil the
// replica is placed at ref's world position and orientation.
func (s *Scene) AddReplica(name string, ref *object.GameObject) (object.Object, error) {
	tmpl, ok := s.InactiveByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoTemplate, name)
	}
	root := s.replicate(tmpl)

	g := root.Base()
	if ref != nil {
		g.SetLocalPosition(ref.WorldPosition())
		g.SetLocalOrientation(ref.WorldOrientation())
	}
	if n := g.Node(); n != nil {
		n.UpdateTree()
	}
	s.log.Debug("added replica", zap.String("object", name), zap.Int("objects", len(s.objects)))
	return root, nil
}

// replicate clones o and its subtree, linking the clones like the originals.
func (s *Scene) replicate(o object.Object) object.Object {
	r := o.Clone()
	s.AddObject(r)
	for _, c := range o.Base().Children() {
		rc := s.replicate(c)
		if rn, pn := rc.Base().Node(), r.Base().Node(); rn != nil && pn != nil {
			pn.AddChild(rn) // the cloned local transform is the authored offset
		}
	}
	return r
}
