package crypto

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// DeviceFingerprint returns a stable identifier for the current machine.
// It falls back to the hostname, and to "unknown-device" when even that
// is unavailable.
func DeviceFingerprint() string {
	var id string
	switch runtime.GOOS {
	case "darwin":
		id = macOSUUID()
	case "linux":
		id = linuxMachineID()
	}
	if id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "unknown-device"
}

func macOSUUID() string {
	out, err := exec.Command("ioreg", "-rd1", "-c", "IOPlatformExpertDevice").Output()
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, "IOPlatformUUID") {
			parts := strings.Split(line, "\"")
			if len(parts) >= 4 {
				return parts[3]
			}
		}
	}
	return ""
}

func linuxMachineID() string {
	for _, path := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id", "/sys/class/dmi/id/product_uuid"} {
		b, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(b)); id != "" {
			return id
		}
	}
	return ""
}
