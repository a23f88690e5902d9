package masterdata

import "testing"

func validDevice() Device {
	return Device{
		ID:             "dev-1",
		InstallationID: "inst-1",
		Label:          "Dach Süd",
		Type:           DeviceTypePVString,
	}
}

func TestDeviceValidate(t *testing.T) {
	if err := validDevice().Validate(); err != nil {
		t.Fatalf("valid device rejected: %v", err)
	}

	other := validDevice()
	other.Type = DeviceTypeOther
	other.Category = CategoryConsumer
	if err := other.Validate(); err != nil {
		t.Fatalf("valid other device rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Device)
	}{
		{"empty id", func(d *Device) { d.ID = "" }},
		{"empty installation id", func(d *Device) { d.InstallationID = "" }},
		{"empty label", func(d *Device) { d.Label = "" }},
		{"unknown type", func(d *Device) { d.Type = DeviceType("windmill") }},
		{"other without category", func(d *Device) { d.Type = DeviceTypeOther }},
		{"category on typed device", func(d *Device) { d.Category = CategoryProducer }},
	}
	for _, tc := range cases {
		device := validDevice()
		tc.mutate(&device)
		if err := device.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestInstallationValidate(t *testing.T) {
	valid := Installation{ID: "inst-1", TenantID: "tenant-1", Name: "Haus Meier"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid installation rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Installation)
	}{
		{"empty id", func(i *Installation) { i.ID = "" }},
		{"empty tenant id", func(i *Installation) { i.TenantID = "" }},
		{"empty name", func(i *Installation) { i.Name = "" }},
	}
	for _, tc := range cases {
		installation := valid
		tc.mutate(&installation)
		if err := installation.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}
