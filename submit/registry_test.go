package submit

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestRegisterAndNewDevice(t *testing.T) {
	const name = "registry-test"
	Register(name, func() (Device, error) { return nil, nil })
	defer Unregister(name)

	if !IsRegistered(name) {
		t.Fatalf("%q not registered", name)
	}
	if !slices.Contains(Devices(), name) {
		t.Errorf("Devices() = %v, missing %q", Devices(), name)
	}
	if !slices.IsSorted(Devices()) {
		t.Errorf("Devices() = %v, not sorted", Devices())
	}
	if _, err := NewDevice(name); err != nil {
		t.Errorf("NewDevice(%q) error = %v", name, err)
	}
}

func TestNewDeviceUnknown(t *testing.T) {
	_, err := NewDevice("does-not-exist")
	if err == nil {
		t.Fatal("expected error for unknown device")
	}
	if !strings.Contains(err.Error(), "forgotten import") {
		t.Errorf("error %q lacks import hint", err)
	}
}

func TestNewDeviceFactoryError(t *testing.T) {
	const name = "registry-test-failing"
	errBoom := errors.New("boom")
	Register(name, func() (Device, error) { return nil, errBoom })
	defer Unregister(name)

	if _, err := NewDevice(name); !errors.Is(err, errBoom) {
		t.Errorf("NewDevice() error = %v, want %v", err, errBoom)
	}
}

func TestRegisterPanics(t *testing.T) {
	const name = "registry-test-dup"
	Register(name, func() (Device, error) { return nil, nil })
	defer Unregister(name)

	tests := []struct {
		name    string
		factory Factory
	}{
		{"duplicate", func() (Device, error) { return nil, nil }},
		{"nil factory", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Register did not panic")
				}
			}()
			regName := name
			if tt.factory == nil {
				regName = "registry-test-nil"
			}
			Register(regName, tt.factory)
		})
	}
}

func TestUnregisterUnknownIsNoOp(t *testing.T) {
	before := len(Devices())
	Unregister("never-registered")
	if len(Devices()) != before {
		t.Error("Unregister changed the registry")
	}
}
