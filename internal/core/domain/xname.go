package domain

import "fmt"

// BladeRef identifies a single virtual blade instance by class.
type BladeRef struct {
	Class    string `yaml:"class" json:"class"`
	Instance int    `yaml:"instance" json:"instance"`
}

// NodeRef identifies a single virtual node instance by class.
type NodeRef struct {
	Class    string `yaml:"class" json:"class"`
	Instance int    `yaml:"instance" json:"instance"`
}

// BladeXName composes the Shasta XNAME of a river blade BMC from its
// cabinet, chassis and slot coordinates, e.g. x3000c0s4b0.
func BladeXName(cabinet, chassis, slot int) string {
	return fmt.Sprintf("x%dc%ds%db0", cabinet, chassis, slot)
}

// NodeXName composes the XNAME of a node hosted on a blade from the blade
// XNAME and the node's index on that blade, e.g. x3000c0s4b0n1.
func NodeXName(bladeXName string, index int) string {
	return fmt.Sprintf("%sn%d", bladeXName, index)
}
