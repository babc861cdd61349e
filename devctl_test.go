package devctl

import (
	"regexp"
	"testing"

	"github.com/nanoncore/nano-devctl/templates"
	"github.com/nanoncore/nano-devctl/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDeviceTypes(t *testing.T) {
	got := ListDeviceTypes()
	require.Len(t, got, 12)
	want := map[DeviceType]Family{
		1: FamilySwitch, 2: FamilyOLT, 3: FamilyONU, 4: FamilySwitch,
		5: FamilyOLT, 6: FamilyONU, 7: FamilyONU, 8: FamilySwitch,
		9: FamilySwitch, 10: FamilySwitch, 11: FamilySwitch, 12: FamilySwitch,
	}
	for i, info := range got {
		assert.Equal(t, DeviceType(i+1), info.Code)
		assert.Equal(t, want[info.Code], info.Family, "device type %d", info.Code)
		assert.NotEmpty(t, info.Description)
	}
}

func TestTemplateShortCodes(t *testing.T) {
	re := regexp.MustCompile(`^\w{1,64}$`)
	seen := make(map[string]bool)
	all := templates.All()
	require.NotEmpty(t, all)
	for _, tmpl := range all {
		code := tmpl.ShortCode()
		assert.Regexp(t, re, code)
		assert.False(t, seen[code], "short code %q is taken twice", code)
		seen[code] = true
	}
}

func TestListConfigTemplates(t *testing.T) {
	got, err := ListConfigTemplates(6)
	require.NoError(t, err)
	codes := make([]string, 0, len(got))
	for _, d := range got {
		codes = append(codes, d.ShortCode)
		assert.True(t, d.AcceptsVLAN)
	}
	assert.Contains(t, codes, "zte_f660_bridge")
	assert.NotContains(t, codes, "zte_f601_bridge")

	none, err := ListConfigTemplates(1)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = ListConfigTemplates(99)
	assert.ErrorIs(t, err, types.ErrUnknownDeviceType)
}

func TestValidateSNMPExtra(t *testing.T) {
	tests := []struct {
		code  DeviceType
		value string
		ok    bool
	}{
		{1, "anything", true},
		{5, "", true},
		{3, "", true},
		{3, "12", true},
		{3, "-4", false},
		{3, "abc", false},
		{6, "268501504.5", true},
		{6, "268501504", false},
		{7, "1.2.3", false},
		{99, "", false},
	}
	for _, tt := range tests {
		err := ValidateSNMPExtra(tt.code, tt.value)
		if tt.ok {
			assert.NoError(t, err, "ValidateSNMPExtra(%d, %q)", tt.code, tt.value)
		} else {
			assert.Error(t, err, "ValidateSNMPExtra(%d, %q)", tt.code, tt.value)
		}
	}
}

func TestCapabilityMatrix(t *testing.T) {
	for _, f := range GetSupportedFamilies() {
		caps, ok := GetFamilyCapabilities(f)
		require.True(t, ok, "family %s", f)
		assert.Contains(t, caps.SupportedProtocols, caps.ReadMethod)
		assert.Contains(t, caps.SupportedProtocols, caps.ConfigMethod)
	}
	_, ok := GetFamilyCapabilities("router")
	assert.False(t, ok)
}
