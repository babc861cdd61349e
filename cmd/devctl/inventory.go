package main

import (
	"os"

	"github.com/nanoncore/nano-devctl/model"
	"github.com/nanoncore/nano-devctl/types"
	"gopkg.in/yaml.v3"
)

// inventory is the device list devctl works on.
type inventory struct {
	Devices []*model.Device `yaml:"devices"`
}

func loadInventory(path string) (*inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.Wrap(types.KindConfiguration, err, "inventory: read %s", path)
	}
	var inv inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, types.Wrap(types.KindConfiguration, err, "inventory: parse %s", path)
	}
	seen := make(map[int64]bool, len(inv.Devices))
	for _, d := range inv.Devices {
		if d.ID <= 0 {
			return nil, types.Errorf(types.KindConfiguration, "inventory: device %q has no id", d.Name)
		}
		if seen[d.ID] {
			return nil, types.Errorf(types.KindConfiguration, "inventory: device id %d is listed twice", d.ID)
		}
		seen[d.ID] = true
	}
	return &inv, nil
}

// changed reports whether any locator in devs differs from the inventory.
func (inv *inventory) changed(devs []*model.Device) bool {
	extra := make(map[int64]string, len(inv.Devices))
	for _, d := range inv.Devices {
		extra[d.ID] = d.SNMPExtra
	}
	for _, d := range devs {
		if extra[d.ID] != d.SNMPExtra {
			return true
		}
	}
	return false
}

// saveInventory writes devs back to path through a temporary file.
func saveInventory(path string, devs []*model.Device) error {
	data, err := yaml.Marshal(&inventory{Devices: devs})
	if err != nil {
		return types.Wrap(types.KindConfiguration, err, "inventory: encode")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return types.Wrap(types.KindConfiguration, err, "inventory: write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return types.Wrap(types.KindConfiguration, err, "inventory: replace %s", path)
	}
	return nil
}
