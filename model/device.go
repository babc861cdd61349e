// Package model contains the device record view consumed by the drivers.
// The record itself is owned by an external store; drivers only read it
// and report locator changes back through the orchestrator.
package model

import (
	"fmt"
	"strconv"
)

// DeviceType is the integer code a driver is registered under.
type DeviceType int

// ExtraData is the free-form JSON bag stored with a device record.
// It carries CLI credentials and defaults such as "default_vid".
type ExtraData map[string]interface{}

// Device is a view of one device record.
type Device struct {
	// ID is the stable identity of the record in the external store
	ID int64 `json:"id" yaml:"id"`

	// Name is the operator-facing label, used in monitoring templates
	Name string `json:"name" yaml:"name"`

	// IP is the management endpoint. Empty for ONUs reached through a parent.
	IP string `json:"ip,omitempty" yaml:"ip,omitempty"`

	// MAC is the vendor MAC of the device, colon-separated lower-case hex
	MAC string `json:"mac,omitempty" yaml:"mac,omitempty"`

	// Type is the registered device-type code
	Type DeviceType `json:"type" yaml:"type"`

	// ParentID links an ONU to its OLT (0 when absent)
	ParentID int64 `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`

	// Parent is filled in by the orchestrator when ParentID is set
	Parent *Device `json:"-" yaml:"-"`

	// Community is the SNMP community string
	Community string `json:"community,omitempty" yaml:"community,omitempty"`

	// SNMPExtra is the vendor-specific locator owned by the driver
	SNMPExtra string `json:"snmp_extra,omitempty" yaml:"snmp_extra,omitempty"`

	// ExtraData carries credentials and defaults
	ExtraData ExtraData `json:"extra_data,omitempty" yaml:"extra_data,omitempty"`
}

// HasParent reports whether the record references a parent device.
func (d *Device) HasParent() bool {
	return d != nil && d.ParentID != 0
}

// Registered reports whether the device carries a locator.
func (d *Device) Registered() bool {
	return d != nil && d.SNMPExtra != ""
}

// Clone returns a copy of the record. ExtraData is copied shallowly,
// Parent is shared.
func (d *Device) Clone() *Device {
	if d == nil {
		return nil
	}
	c := *d
	if d.ExtraData != nil {
		c.ExtraData = make(ExtraData, len(d.ExtraData))
		for k, v := range d.ExtraData {
			c.ExtraData[k] = v
		}
	}
	return &c
}

func (d *Device) String() string {
	if d == nil {
		return "device <nil>"
	}
	if d.IP == "" {
		return "device " + strconv.FormatInt(d.ID, 10)
	}
	return fmt.Sprintf("device %d (%s)", d.ID, d.IP)
}
