package scenegraph

// Option is a controller behaviour switch.
type Option int

// Controller options.
const (
	// OptionReset makes the controller capture the node's current local
	// transform as its base on the next evaluation.
	OptionReset Option = iota
	// OptionIpoAsForce applies animated location as a physics force.
	OptionIpoAsForce
	// OptionIpoAdd adds animated values on top of the base transform.
	OptionIpoAdd
	// OptionLocal interprets force and additive values in local space.
	OptionLocal
)

func (o Option) String() string {
	switch o {
	case OptionReset:
		return "reset"
	case OptionIpoAsForce:
		return "ipo_as_force"
	case OptionIpoAdd:
		return "ipo_add"
	case OptionLocal:
		return "local"
	}
	return "unknown"
}

// Controller drives part of a node (or of the object the node represents)
// from a simulated time. Nodes own the controllers attached to them.
type Controller interface {
	// SetNode binds the controller to n. It is called with nil when the
	// controller is detached.
	SetNode(n *Node)
	SetOption(opt Option, value bool)
	// SetSimulatedTime records the frame evaluated by the next Update.
	SetSimulatedTime(frame float64)
	// Update applies the controller. It reports whether the node changed.
	Update() bool
}
